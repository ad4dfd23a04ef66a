package dto

// ReportFilter is bound from the query string of the report endpoints.
// Dates are YYYY-MM-DD in the store timezone; To is inclusive.
type ReportFilter struct {
	From  string `form:"from"`
	To    string `form:"to"`
	Limit int    `form:"limit,default=10" validate:"min=0,max=100"`
	Days  int    `form:"days,default=30"  validate:"min=0,max=365"`
}
