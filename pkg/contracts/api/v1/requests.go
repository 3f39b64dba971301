// Package api contains the request and response contracts of the
// dashboard API. Version v1 is served under /api/v1.
package api

// DimensionRequest addresses one dimension by key.
type DimensionRequest struct {
	Dimension string `json:"dim" query:"dim" validate:"required,dimension"`
}

// MacroRequest is the query of the macro view endpoints.
type MacroRequest struct {
	Dimension string   `json:"dim" query:"dim" validate:"required,dimension"`
	Category  string   `json:"category,omitempty" query:"category" validate:"omitempty,label"`
	Sources   []string `json:"source,omitempty" query:"source" validate:"omitempty,max=100,dive,label"`
	ShowAll   bool     `json:"all,omitempty" query:"all"`
}

// MicroRequest is the query of the micro view endpoints. Subcategories is
// nil when the parameter is absent, which selects every entry; an empty
// non-nil list selects none. Compare names the single source paired with
// the focus source.
type MicroRequest struct {
	Dimension     string   `json:"dim" query:"dim" validate:"required,dimension"`
	Macro         string   `json:"macro,omitempty" query:"macro" validate:"omitempty,label"`
	Subcategories []string `json:"subcategory,omitempty" query:"subcategory" validate:"omitempty,max=100,dive,label"`
	Compare       string   `json:"compare,omitempty" query:"compare" validate:"omitempty,label"`
}
