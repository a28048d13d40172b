package controllers

import (
	"encoding/json"
	"testing"
)

func TestDashboardStatsFieldsAtTopLevel(t *testing.T) {
	payload, err := json.Marshal(dashboardStats{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, key := range []string{
		"totalInvoiced", "totalCollected", "totalOutstanding",
		"collectionRate", "dailyCollection", "totalCapacity",
		"enrolledStudents", "revenuePerSeat", "recentInvoices",
		"context", "cached",
	} {
		if _, ok := body[key]; !ok {
			t.Fatalf("expected top-level field %q in dashboard payload", key)
		}
	}
	if _, ok := body["stats"]; ok {
		t.Fatalf("dashboard payload must not nest its fields under a wrapper key")
	}
}

func TestSendRemindersChannelDefaults(t *testing.T) {
	on := true
	off := false

	tests := []struct {
		name      string
		req       SendRemindersRequest
		wantSMS   bool
		wantEmail bool
	}{
		{name: "both omitted default on", req: SendRemindersRequest{}, wantSMS: true, wantEmail: true},
		{name: "explicit false wins", req: SendRemindersRequest{SendSMS: &off, SendEmail: &off}, wantSMS: false, wantEmail: false},
		{name: "mixed toggles", req: SendRemindersRequest{SendSMS: &off, SendEmail: &on}, wantSMS: false, wantEmail: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			sms, email := tc.req.channels()
			if sms != tc.wantSMS || email != tc.wantEmail {
				t.Fatalf("expected sms=%v email=%v, got sms=%v email=%v", tc.wantSMS, tc.wantEmail, sms, email)
			}
		})
	}
}
