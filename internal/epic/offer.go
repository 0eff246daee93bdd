package epic

import (
	"fmt"
	"time"
)

// Offer is the free game currently promoted on the Epic Games Store.
type Offer struct {
	Identity     string // namespace:id pair, stable per offer instance
	Title        string
	Description  string
	WindowEnd    time.Time // UTC end of the free window
	PurchaseLink string
	InfoLink     string // store page, empty if the offer has no slug
	ImageURL     string
}

// Catalog response types. Only the fields the selection logic needs
// are modeled; the upstream payload carries far more.

type catalogResponse struct {
	Data struct {
		Catalog struct {
			SearchStore struct {
				Elements []catalogElement `json:"elements"`
			} `json:"searchStore"`
		} `json:"Catalog"`
	} `json:"data"`
}

type catalogElement struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Namespace   string     `json:"namespace"`
	ID          string     `json:"id"`
	ProductSlug string     `json:"productSlug"`
	URLSlug     string     `json:"urlSlug"`
	KeyImages   []keyImage `json:"keyImages"`
	Promotions  *struct {
		PromotionalOffers []promoBlock `json:"promotionalOffers"`
	} `json:"promotions"`
}

type keyImage struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type promoBlock struct {
	PromotionalOffers []promoWindow `json:"promotionalOffers"`
}

type promoWindow struct {
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	DiscountSetting struct {
		DiscountPercentage int `json:"discountPercentage"`
	} `json:"discountSetting"`
}

// freeWindow returns the promotional window making the element free right
// now, or nil. A discountPercentage of 0 means the price is reduced to
// zero (the store's convention, not "no discount").
func (e *catalogElement) freeWindow(now time.Time) *promoWindow {
	if e.Promotions == nil {
		return nil
	}
	for _, block := range e.Promotions.PromotionalOffers {
		for i := range block.PromotionalOffers {
			w := &block.PromotionalOffers[i]
			if w.DiscountSetting.DiscountPercentage != 0 {
				continue
			}
			start, err := time.Parse(time.RFC3339, w.StartDate)
			if err != nil {
				continue
			}
			end, err := time.Parse(time.RFC3339, w.EndDate)
			if err != nil {
				continue
			}
			if !start.After(now) && !now.After(end) {
				return w
			}
		}
	}
	return nil
}

// pickFreeOffer selects the current free offer from the catalog elements.
// When several qualify the first in upstream order wins; the store is
// expected to promote at most one at a time. Returns nil when none is
// free right now.
func pickFreeOffer(elements []catalogElement, now time.Time) *Offer {
	for i := range elements {
		e := &elements[i]
		w := e.freeWindow(now)
		if w == nil {
			continue
		}

		end, _ := time.Parse(time.RFC3339, w.EndDate)
		return &Offer{
			Identity:     e.Namespace + ":" + e.ID,
			Title:        e.Title,
			Description:  e.Description,
			WindowEnd:    end.UTC(),
			PurchaseLink: purchaseLink(e.Namespace, e.ID),
			InfoLink:     infoLink(e.ProductSlug, e.URLSlug),
			ImageURL:     pickImage(e.KeyImages),
		}
	}
	return nil
}

// purchaseLink builds the direct checkout URL for an offer.
func purchaseLink(namespace, id string) string {
	return fmt.Sprintf("https://store.epicgames.com/purchase?link_generated_by=freegs&highlightColor=338855&lang=en-US&offers=1-%s-%s&showNavigation=false#/purchase/payment-methods", namespace, id)
}

// infoLink builds the store page URL, preferring productSlug over urlSlug.
func infoLink(productSlug, urlSlug string) string {
	slug := productSlug
	if slug == "" {
		slug = urlSlug
	}
	if slug == "" {
		return ""
	}
	return "https://store.epicgames.com/en-US/p/" + slug
}

// pickImage prefers the wide store-front image, then the wide offer
// image, then whatever comes first.
func pickImage(images []keyImage) string {
	for _, want := range []string{"DieselStoreFrontWide", "OfferImageWide"} {
		for _, img := range images {
			if img.Type == want {
				return img.URL
			}
		}
	}
	if len(images) > 0 {
		return images[0].URL
	}
	return ""
}
