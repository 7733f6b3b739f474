package azure

type operationStatus string

const (
	statusSucceeded  operationStatus = "succeeded"
	statusRunning    operationStatus = "running"
	statusNotStarted operationStatus = "notStarted"
)

type analyzeOperation struct {
	Status operationStatus `json:"status"`
	Result analyzeResult   `json:"analyzeResult"`
	Error  *operationError `json:"error"`
}

type analyzeResult struct {
	ModelID string `json:"modelId"`
	Content string `json:"content"`
}

type operationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
