package service

import (
	"testing"

	"DawnCall/internal/model"
)

func TestMapProviderStatus(t *testing.T) {
	cases := []struct {
		status   string
		want     model.NotificationLogStatus
		terminal bool
	}{
		{"delivered", model.NotificationLogStatusDelivered, true},
		{"completed", model.NotificationLogStatusDelivered, true},
		{"failed", model.NotificationLogStatusFailed, true},
		{"undelivered", model.NotificationLogStatusFailed, true},
		{"busy", model.NotificationLogStatusFailed, true},
		{"no-answer", model.NotificationLogStatusFailed, true},
		{"canceled", model.NotificationLogStatusFailed, true},
		// 中间态不改流水
		{"queued", "", false},
		{"sent", "", false},
		{"ringing", "", false},
		{"in-progress", "", false},
	}

	for _, c := range cases {
		got, terminal := mapProviderStatus(c.status)
		if got != c.want || terminal != c.terminal {
			t.Errorf("mapProviderStatus(%q) = (%q, %v), want (%q, %v)",
				c.status, got, terminal, c.want, c.terminal)
		}
	}
}
