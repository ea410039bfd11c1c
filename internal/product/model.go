package product

// Product and Variant are catalog records maintained by the admin catalog
// flow. Orders snapshot their ids and resolve names on population reads.
type Product struct {
	ID       string
	Name     string
	ImageURL string
}

type Variant struct {
	ID        string
	ProductID string
	Name      string
	Price     int64
}
