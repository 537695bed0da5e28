package provision

// Outcome classifies what happened to one listing id.
type Outcome string

const (
	OutcomeAssignedExisting Outcome = "assigned_existing"
	OutcomeCreated          Outcome = "created"
	OutcomeSkippedInvalid   Outcome = "skipped_invalid"
	OutcomeSkippedNoEmail   Outcome = "skipped_no_email"
	OutcomeCreateFailed     Outcome = "create_failed"
	OutcomeUpdateFailed     Outcome = "update_failed"
)

// Result records the outcome for one listing id.
type Result struct {
	ListingID int64
	Outcome   Outcome
	UserID    int64
}

// Report collects the per-listing results of one run, in input order.
type Report struct {
	Results []Result
}

// Count returns how many results had outcome.
func (r Report) Count(outcome Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// Assigned returns the number of listings whose author was changed.
func (r Report) Assigned() int {
	return r.Count(OutcomeAssignedExisting) + r.Count(OutcomeCreated)
}

func (r *Report) add(listingID int64, outcome Outcome, userID int64) {
	r.Results = append(r.Results, Result{ListingID: listingID, Outcome: outcome, UserID: userID})
}
