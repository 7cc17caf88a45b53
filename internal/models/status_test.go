package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBookingStatus(t *testing.T) {
	for _, valid := range []string{"pending", "accepted", "rejected", "paid", "expired"} {
		status, err := ParseBookingStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, BookingStatus(valid), status)
	}

	_, err := ParseBookingStatus("cancelled")
	assert.Error(t, err)
	_, err = ParseBookingStatus("")
	assert.Error(t, err)
}

func TestBookingStatusTerminal(t *testing.T) {
	assert.False(t, BookingStatusPending.Terminal())
	assert.False(t, BookingStatusAccepted.Terminal())
	assert.True(t, BookingStatusRejected.Terminal())
	assert.True(t, BookingStatusPaid.Terminal())
	assert.True(t, BookingStatusExpired.Terminal())
}

func TestParseTicketStatus(t *testing.T) {
	status, err := ParseTicketStatus("approved")
	require.NoError(t, err)
	assert.Equal(t, TicketStatusApproved, status)

	_, err = ParseTicketStatus("live")
	assert.Error(t, err)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("vendor")
	require.NoError(t, err)
	assert.Equal(t, RoleVendor, role)

	_, err = ParseRole("superuser")
	assert.Error(t, err)
}

func TestParseTransportType(t *testing.T) {
	for _, valid := range []string{"bus", "train", "plane"} {
		tt, err := ParseTransportType(valid)
		require.NoError(t, err)
		assert.Equal(t, TransportType(valid), tt)
	}

	_, err := ParseTransportType("ferry")
	assert.Error(t, err)
}
