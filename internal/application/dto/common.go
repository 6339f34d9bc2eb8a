package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// PartialFailureResponse cuerpo 207 cuando una operación de varios pasos quedó a medias.
type PartialFailureResponse struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Folio     string   `json:"folio"`
	Completed []string `json:"completed"`
	Failed    string   `json:"failed"`
}
