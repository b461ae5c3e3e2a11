package dto

type StartSessionRequest struct {
	Mode     string `json:"mode" validate:"required,oneof=demo live"`
	Language string `json:"language" validate:"required,oneof=en id"`
}

type DiagnosisRequest struct {
	SkinType  string   `json:"skin_type" validate:"required,oneof=oily dry combination normal sensitive unknown"`
	Concerns  []string `json:"concerns" validate:"required,min=1,max=5,dive,required"`
	Sensitive bool     `json:"sensitive"`
}

type AttachPhotosRequest struct {
	Photos []PhotoUploadRequest `json:"photos" validate:"required,min=1,max=2,dive"`
}

type PhotoUploadRequest struct {
	Slot     string `json:"slot" validate:"required,oneof=daylight indoor_white"`
	SourceID string `json:"source_id" validate:"required"`
}

type UseSamplePhotosRequest struct {
	SampleSetID string `json:"sample_set_id" validate:"required"`
}

type RiskCheckRequest struct {
	// Flagged holds the ids of any red-flag conditions the user confirmed.
	Flagged []string `json:"flagged"`
}

type BudgetRequest struct {
	Tier string `json:"tier" validate:"required,oneof=essential balanced premium"`
}

type SelectOfferRequest struct {
	Category string `json:"category" validate:"required"`
	Variant  string `json:"variant" validate:"required,oneof=premium dupe"`
	OfferID  string `json:"offer_id" validate:"required"`
}

type AffiliateOutcomeRequest struct {
	OfferID   string `json:"offer_id" validate:"required"`
	Completed bool   `json:"completed"`
}
