package dto

// PlanInfo 套餐展示信息
type PlanInfo struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	PricePeriod string   `json:"price_period,omitempty"`
	YearlyPrice string   `json:"yearly_price,omitempty"`
	Description string   `json:"description"`
	Credits     int      `json:"credits"`
	Features    []string `json:"features"`
	Featured    bool     `json:"featured"`
}

type CatalogResponse struct {
	Templates          []string   `json:"templates"`
	Tones              []string   `json:"tones"`
	Languages          []string   `json:"languages"`
	DescriptionLengths []string   `json:"description_lengths"`
	Plans              []PlanInfo `json:"plans"`
}
