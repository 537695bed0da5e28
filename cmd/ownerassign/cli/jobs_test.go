package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ownerassign/ownerassign/internal/provision"
)

func TestParseListingIDs(t *testing.T) {
	ids, err := ParseListingIDs([]string{"12", " 7 "})
	require.NoError(t, err)
	assert.Equal(t, []int64{12, 7}, ids)

	ids, err = ParseListingIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	for _, bad := range []string{"abc", "0", "-4"} {
		_, err := ParseListingIDs([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestFormatReport(t *testing.T) {
	report := provision.Report{Results: []provision.Result{
		{ListingID: 12, Outcome: provision.OutcomeCreated, UserID: 5},
		{ListingID: 3, Outcome: provision.OutcomeAssignedExisting, UserID: 5},
		{ListingID: 7, Outcome: provision.OutcomeSkippedNoEmail},
	}}
	assert.Equal(t,
		"processed=3 assigned=2 created=1 skipped_invalid=0 skipped_no_email=1 create_failed=0 update_failed=0",
		FormatReport(report))
}

func TestUnconfiguredJobsCLI(t *testing.T) {
	var c *JobsCLI
	_, err := c.EnqueueProvision(context.Background(), nil)
	assert.Error(t, err)
	_, err = c.InspectQueue(context.Background())
	assert.Error(t, err)
}
