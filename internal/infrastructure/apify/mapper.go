package apify

import (
	"github.com/voicecommerce/backend/internal/domain"
)

// Alias keys of a raw dataset item, in resolution order.
var (
	nameKeys  = []string{"name", "title"}
	priceKeys = []string{"price", "priceMin", "price_value", "price_int"}
	urlKeys   = []string{"url", "productUrl", "product_url"}
	imageKeys = []string{"image", "imageUrl", "image_url", "img", "images"}
)

// MapToProductRecord converts one raw dataset item into a ProductRecord.
// The returned error is a non-fatal price parse fault; the record is always usable.
func MapToProductRecord(item map[string]any) (domain.ProductRecord, error) {
	value, price, err := NormalizePrice(firstPresent(item, priceKeys...))
	if price == "" {
		price = domain.PricePlaceholder
	}

	return domain.ProductRecord{
		Name:       firstString(item, nameKeys...),
		Price:      price,
		PriceValue: value,
		URL:        firstString(item, urlKeys...),
		Image:      NormalizeImage(firstPresent(item, imageKeys...)),
	}, err
}
