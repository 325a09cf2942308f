package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/netvista/ispconsole-backend/internal/model"
)

func TestCanTransitionForward(t *testing.T) {
	cases := []struct {
		channel model.Channel
		from    model.MessageStatus
		to      model.MessageStatus
		want    bool
	}{
		{model.ChannelEmail, model.StatusPending, model.StatusSent, true},
		{model.ChannelEmail, model.StatusSent, model.StatusDelivered, true},
		{model.ChannelEmail, model.StatusDelivered, model.StatusOpened, true},
		// Out-of-order callbacks may jump forward.
		{model.ChannelEmail, model.StatusPending, model.StatusDelivered, true},
		{model.ChannelSMS, model.StatusPending, model.StatusDelivered, true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, model.CanTransition(tc.channel, tc.from, tc.to),
			"%s: %s -> %s", tc.channel, tc.from, tc.to)
	}
}

func TestCanTransitionNeverRegresses(t *testing.T) {
	cases := []struct {
		from model.MessageStatus
		to   model.MessageStatus
	}{
		{model.StatusSent, model.StatusPending},
		{model.StatusDelivered, model.StatusSent},
		{model.StatusOpened, model.StatusDelivered},
		{model.StatusSent, model.StatusSent},
	}

	for _, tc := range cases {
		assert.False(t, model.CanTransition(model.ChannelEmail, tc.from, tc.to),
			"%s -> %s must be ignored", tc.from, tc.to)
	}
}

func TestCanTransitionFailed(t *testing.T) {
	assert.True(t, model.CanTransition(model.ChannelEmail, model.StatusPending, model.StatusFailed))
	assert.True(t, model.CanTransition(model.ChannelSMS, model.StatusSent, model.StatusFailed))

	// failed is unreachable once the provider confirmed delivery.
	assert.False(t, model.CanTransition(model.ChannelEmail, model.StatusDelivered, model.StatusFailed))

	// failed is terminal.
	assert.False(t, model.CanTransition(model.ChannelEmail, model.StatusFailed, model.StatusSent))
	assert.False(t, model.CanTransition(model.ChannelEmail, model.StatusFailed, model.StatusDelivered))
}

func TestCanTransitionOpenedIsEmailOnly(t *testing.T) {
	assert.True(t, model.CanTransition(model.ChannelEmail, model.StatusDelivered, model.StatusOpened))
	assert.False(t, model.CanTransition(model.ChannelSMS, model.StatusDelivered, model.StatusOpened))
}

func TestRecipientContact(t *testing.T) {
	rec := model.Recipient{Email: "jane@example.com", Phone: "+254700111222"}

	assert.Equal(t, "jane@example.com", rec.Contact(model.ChannelEmail))
	assert.Equal(t, "+254700111222", rec.Contact(model.ChannelSMS))
}

func TestRecipientKeyDisambiguatesTypes(t *testing.T) {
	customer := model.Recipient{ID: 7, Type: model.RecipientCustomer}
	employee := model.Recipient{ID: 7, Type: model.RecipientEmployee}

	assert.NotEqual(t, customer.Key(), employee.Key())
}
