package templates

import (
	"strings"
	"testing"
)

func TestRenderPush(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	tests := []struct {
		kind      string
		data      map[string]interface{}
		wantTitle string
		wantBody  string
	}{
		{
			kind:      "weekly_review",
			data:      map[string]interface{}{"total_invest": "18.00", "pending_count": 2},
			wantTitle: "Your weekly review is ready",
			wantBody:  "You could invest $18.00 from 2 rule(s) this week. Tap to review.",
		},
		{
			kind:      "streak_bonus",
			data:      map[string]interface{}{"streak": float64(3), "bonus_percent": float64(30)},
			wantTitle: "3-week streak!",
			wantBody:  "You beat your target 3 weeks in a row. Your investment now gets a 30% bonus.",
		},
		{
			kind:      "order_filled",
			data:      map[string]interface{}{"amount": "18.00", "symbol": "VTI"},
			wantTitle: "Order filled",
			wantBody:  "Your $18.00 of VTI was filled.",
		},
		{
			kind:      "order_filled",
			data:      map[string]interface{}{"amount": "18.00", "symbol": "VTI", "units": "0.0713", "price": "252.40"},
			wantTitle: "Order filled",
			wantBody:  "Your $18.00 of VTI was filled for 0.0713 shares at $252.40.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			title, body, err := r.RenderPush(tt.kind, tt.data)
			if err != nil {
				t.Fatalf("RenderPush: %v", err)
			}
			if title != tt.wantTitle {
				t.Errorf("title = %q, want %q", title, tt.wantTitle)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}

	if _, _, err := r.RenderPush("payroll", nil); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestRenderEmail(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	if !r.HasEmail("order_failed") || r.HasEmail("order_filled") {
		t.Error("unexpected HasEmail result")
	}

	subject, html, text, err := r.RenderEmail("order_failed", map[string]interface{}{
		"amount": "18.00",
		"symbol": "VTI",
		"reason": "<insufficient funds>",
	})
	if err != nil {
		t.Fatalf("RenderEmail: %v", err)
	}
	if subject != "Your $18.00 VTI order was not placed" {
		t.Errorf("subject = %q", subject)
	}
	if !strings.Contains(html, "&lt;insufficient funds&gt;") {
		t.Error("expected reason to be HTML escaped")
	}
	if !strings.Contains(text, "Reason: <insufficient funds>") {
		t.Errorf("unexpected text body %q", text)
	}
}
