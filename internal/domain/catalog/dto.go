// internal/domain/catalog/dto.go
package catalog

// CreateProductRequest creates a new listing for the authenticated seller.
type CreateProductRequest struct {
	Name         string  `json:"name" binding:"required,max=255"`
	Description  string  `json:"description"`
	Features     string  `json:"features"`
	Requirements string  `json:"requirements"`
	Discount     float64 `json:"discount" binding:"min=0,max=100"`
	CategoryID   *int64  `json:"category_id"`

	SubscriptionOptions []SubscriptionOptionInput `json:"subscription_options"`
}

// SubscriptionOptionInput is one (plan, price) pricing option supplied by a
// seller. Price is the pre-discount base price.
type SubscriptionOptionInput struct {
	SubscriptionPlanID int64   `json:"subscription_plan_id" binding:"required"`
	Price              float64 `json:"price" binding:"required,min=0"`
}

// ProductPatch is an explicit partial-update payload: nil means the field
// was absent from the request and must be left untouched.
type ProductPatch struct {
	Name         *string  `json:"name" binding:"omitempty,max=255"`
	Description  *string  `json:"description"`
	Features     *string  `json:"features"`
	Requirements *string  `json:"requirements"`
	Discount     *float64 `json:"discount"`

	// When non-nil, replaces the product's active subscription options.
	SubscriptionOptions []SubscriptionOptionInput `json:"subscription_options"`
}

// CreatePlanRequest creates a duration template.
type CreatePlanRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Duration int    `json:"duration" binding:"required,min=1"` // months
}

// UpdatePlanRequest updates a duration template.
type UpdatePlanRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Duration *int    `json:"duration" binding:"omitempty,min=1"`
}

// ProductListFilters filters the public product listing.
type ProductListFilters struct {
	Status     *int   `form:"status"`
	CategoryID *int64 `form:"category"`
}
