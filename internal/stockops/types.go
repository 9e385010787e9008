package stockops

import "fmt"

// AddLine is one line of an add-inventory batch.
type AddLine struct {
	BinCode      string
	BinName      string
	PushNumber   string
	SkidID       string
	ItemCode     string
	Manufacturer string
	Project      string
	Qty          int
	Notes        string
}

// RemoveLine is one line of a remove-inventory batch.
type RemoveLine struct {
	BinCode      string
	ItemCode     string
	Manufacturer string
	Project      string
	Qty          int
	Notes        string
}

// MoveLine is one line of a move or transfer batch.
type MoveLine struct {
	SourceBin    string
	TargetBin    string
	TargetName   string
	ItemCode     string
	Manufacturer string
	Project      string
	Qty          int
	Notes        string
}

// StagingLine drains a skid in the staging area into a racking bin.
type StagingLine struct {
	SkidID       string
	TargetBin    string
	TargetName   string
	ItemCode     string
	Manufacturer string
	Project      string
	Qty          int
	Notes        string
}

// ShipmentLine decrements a bin for an outbound shipment.
type ShipmentLine struct {
	BinCode      string
	ItemCode     string
	Manufacturer string
	Project      string
	Qty          int
	ShipmentID   string
}

// BatchResult reports per-line outcomes of a batch operation. Lines fail
// independently; the batch succeeds only when every line did.
type BatchResult struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message"`
	SuccessCount int      `json:"success_count"`
	Errors       []string `json:"errors"`
}

func batchResult(total, succeeded int, errs []string) BatchResult {
	return BatchResult{
		Success:      len(errs) == 0,
		Message:      fmt.Sprintf("Processed %d items. Successfully processed %d items.", total, succeeded),
		SuccessCount: succeeded,
		Errors:       errs,
	}
}

func lineError(index int, err error) string {
	return fmt.Sprintf("Error processing item #%d: %s", index+1, err.Error())
}

func errMissingField(name string) error {
	return fmt.Errorf("missing required field %s", name)
}

func errInvalidQuantity(qty int) error {
	return fmt.Errorf("invalid quantity %d: must be a positive number", qty)
}

func errInsufficientQuantity(binCode, itemCode string, current, requested int, verb string) error {
	return fmt.Errorf("insufficient quantity in bin %s for item %s. Current: %d, requested to %s: %d",
		binCode, itemCode, current, verb, requested)
}

func errRecordNotFound(binCode, itemCode string) error {
	return fmt.Errorf("no stock record found in bin %s for item %s", binCode, itemCode)
}
