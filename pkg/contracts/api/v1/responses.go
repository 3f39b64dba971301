package api

// DimensionInfo describes one dashboard domain.
type DimensionInfo struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Sheet  string `json:"sheet"`
	YLabel string `json:"y_label"`
}

// DimensionsResponse lists the dashboard domains and the focus source.
type DimensionsResponse struct {
	Focus      string          `json:"focus"`
	Dimensions []DimensionInfo `json:"dimensions"`
}

// SourcesResponse lists the sources reporting a dimension.
type SourcesResponse struct {
	Dimension string   `json:"dimension"`
	Focus     string   `json:"focus"`
	Sources   []string `json:"sources"`
}
