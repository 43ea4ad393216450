package visitor

type CreateVisitorDTO struct {
	VisitorName     string  `json:"visitorName" validate:"required"`
	VisitorDocument *string `json:"visitorDocument" validate:"omitempty,min=11,max=14"`
	VisitDate       string  `json:"visitDate" validate:"required"`
	VisitTime       *string `json:"visitTime"`
}

// UpdateVisitorDTO is a partial update; nil fields keep their value.
type UpdateVisitorDTO struct {
	VisitorName     *string `json:"visitorName" validate:"omitempty,min=1"`
	VisitorDocument *string `json:"visitorDocument" validate:"omitempty,min=11,max=14"`
	VisitDate       *string `json:"visitDate"`
	VisitTime       *string `json:"visitTime"`
	Status          *string `json:"status" validate:"omitempty,oneof=pending approved rejected"`
}
