package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysBetween(t *testing.T) {
	days, err := DaysBetween("2024-01-01", "2024-01-04")
	require.NoError(t, err)
	assert.Equal(t, 3, days)

	days, err = DaysBetween("2024-01-04", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, -3, days)

	days, err = DaysBetween("2024-02-28", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 2, days, "2024 is a leap year")
}

func TestDaysBetweenRejectsBadInput(t *testing.T) {
	_, err := DaysBetween("not-a-date", "2024-01-01")
	assert.Error(t, err)

	_, err = DaysBetween("2024-01-01", "01/02/2024")
	assert.Error(t, err)
}

func TestPriorityNext(t *testing.T) {
	assert.Equal(t, PriorityMedium, PriorityLow.Next())
	assert.Equal(t, PriorityHigh, PriorityMedium.Next())
	assert.Equal(t, PriorityCritical, PriorityHigh.Next())
	assert.Equal(t, PriorityCritical, PriorityCritical.Next())
}

func TestCountHistory(t *testing.T) {
	ticket := &Ticket{}
	assert.Zero(t, ticket.CountHistory(ActionPriorityEscalation))

	ticket.AppendHistory(HistoryEntry{Action: ActionPriorityEscalation})
	ticket.AppendHistory(HistoryEntry{Action: ActionAssigned})
	ticket.AppendHistory(HistoryEntry{Action: ActionPriorityEscalation})

	assert.Equal(t, 2, ticket.CountHistory(ActionPriorityEscalation))
	assert.Equal(t, 1, ticket.CountHistory(ActionAssigned))
}
