package request

// ValidateNationalID carries a single Egyptian national ID.
type ValidateNationalID struct {
	NationalID string `json:"national_id" validate:"required,natid"`
}

// BulkValidateNationalIDs carries up to 100 IDs per call. Entries are not
// format-checked here; malformed ones come back flagged in the results.
type BulkValidateNationalIDs struct {
	NationalIDs []string `json:"national_ids" validate:"required,max=100"`
}
