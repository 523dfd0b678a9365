package notification

import (
	"context"
	"strings"
	"testing"
)

func TestTemplateEngine_RenderBuiltIn(t *testing.T) {
	e := NewTemplateEngine()

	subject, body, err := e.Render("reservation-confirmed", map[string]string{
		"patient_name":  "Ana Petrovic",
		"drug_name":     "Brufen 400mg",
		"pharmacy_name": "Central Pharmacy",
		"pickup_date":   "2026-09-01",
		"price":         "4.50",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject != "Reservation Confirmed: Brufen 400mg" {
		t.Errorf("subject = %q", subject)
	}
	if !strings.Contains(body, "Ana Petrovic") || !strings.Contains(body, "Central Pharmacy") {
		t.Errorf("body missing substitutions: %q", body)
	}
	if strings.Contains(body, "{{") {
		t.Errorf("body has unreplaced placeholders: %q", body)
	}
}

func TestTemplateEngine_MissingKeysLeftAsIs(t *testing.T) {
	e := NewTemplateEngine()

	_, body, err := e.Render("pickup-reminder", map[string]string{
		"patient_name": "Ana",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(body, "{{drug_name}}") {
		t.Errorf("expected unreplaced placeholder kept, body = %q", body)
	}
}

func TestTemplateEngine_UnknownTemplate(t *testing.T) {
	e := NewTemplateEngine()
	if _, _, err := e.Render("no-such-template", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestTemplateEngine_RegisterCustom(t *testing.T) {
	e := NewTemplateEngine()
	e.RegisterTemplate(Template{
		ID:      "price-drop",
		Subject: "Price drop on {{drug_name}}",
		Body:    "Now {{price}} at {{pharmacy_name}}.",
		Type:    TypeSMS,
	})

	subject, _, err := e.Render("price-drop", map[string]string{"drug_name": "Aspirin"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject != "Price drop on Aspirin" {
		t.Errorf("subject = %q", subject)
	}
}

func TestManager_SendEmail(t *testing.T) {
	email := &MockEmailSender{}
	mgr := NewManager(email, &MockSMSSender{}, NewTemplateEngine())

	n := &Notification{
		Type:      TypeEmail,
		Recipient: "ana@example.com",
		Subject:   "Test",
		Body:      "Hello",
	}
	if err := mgr.Send(context.Background(), n); err != nil {
		t.Fatalf("send: %v", err)
	}

	if n.Status != "sent" {
		t.Errorf("status = %q, want sent", n.Status)
	}
	if n.ID == "" || n.SentAt == nil {
		t.Error("expected ID and SentAt to be set")
	}
	calls := email.Calls()
	if len(calls) != 1 || calls[0].To != "ana@example.com" {
		t.Errorf("email calls = %+v", calls)
	}
}

func TestManager_SendFailureStored(t *testing.T) {
	email := &MockEmailSender{ShouldFail: true, FailError: "relay down"}
	mgr := NewManager(email, &MockSMSSender{}, NewTemplateEngine())

	n := &Notification{Type: TypeEmail, Recipient: "ana@example.com", Body: "x"}
	if err := mgr.Send(context.Background(), n); err == nil {
		t.Fatal("expected send error")
	}

	stored, err := mgr.GetNotification(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != "failed" || stored.Error != "relay down" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestManager_SendFromTemplate(t *testing.T) {
	email := &MockEmailSender{}
	mgr := NewManager(email, &MockSMSSender{}, NewTemplateEngine())

	n, err := mgr.SendFromTemplate(context.Background(), "reservation-cancelled", map[string]string{
		"patient_name":  "Ana",
		"drug_name":     "Brufen",
		"pharmacy_name": "Central",
	}, "ana@example.com")
	if err != nil {
		t.Fatalf("send from template: %v", err)
	}
	if n.TemplateID != "reservation-cancelled" || n.Status != "sent" {
		t.Errorf("notification = %+v", n)
	}
	if got := email.Calls()[0].Subject; got != "Reservation Cancelled: Brufen" {
		t.Errorf("subject = %q", got)
	}
}

func TestManager_Retry(t *testing.T) {
	email := &MockEmailSender{ShouldFail: true, FailError: "relay down"}
	mgr := NewManager(email, &MockSMSSender{}, NewTemplateEngine())

	n := &Notification{Type: TypeEmail, Recipient: "ana@example.com", Body: "x"}
	_ = mgr.Send(context.Background(), n)

	email.ShouldFail = false
	if err := mgr.Retry(context.Background(), n.ID); err != nil {
		t.Fatalf("retry: %v", err)
	}

	stored, _ := mgr.GetNotification(context.Background(), n.ID)
	if stored.Status != "sent" || stored.Error != "" {
		t.Errorf("after retry: %+v", stored)
	}

	// A second retry must be rejected because the notification is no longer failed.
	if err := mgr.Retry(context.Background(), n.ID); err == nil {
		t.Fatal("expected retry of sent notification to fail")
	}
}

func TestManager_Stats(t *testing.T) {
	email := &MockEmailSender{}
	mgr := NewManager(email, &MockSMSSender{}, NewTemplateEngine())

	_ = mgr.Send(context.Background(), &Notification{Type: TypeEmail, Recipient: "a@x", Body: "1"})
	_ = mgr.Send(context.Background(), &Notification{Type: TypeEmail, Recipient: "b@x", Body: "2"})
	email.ShouldFail = true
	email.FailError = "down"
	_ = mgr.Send(context.Background(), &Notification{Type: TypeEmail, Recipient: "c@x", Body: "3"})

	stats := mgr.Stats(context.Background())
	if stats["sent"] != 2 || stats["failed"] != 1 {
		t.Errorf("stats = %v", stats)
	}
}

func TestManager_ListByRecipient(t *testing.T) {
	mgr := NewManager(&MockEmailSender{}, &MockSMSSender{}, NewTemplateEngine())

	_ = mgr.Send(context.Background(), &Notification{Type: TypeEmail, Recipient: "ana@example.com", Body: "1"})
	_ = mgr.Send(context.Background(), &Notification{Type: TypeEmail, Recipient: "ana@example.com", Body: "2"})
	_ = mgr.Send(context.Background(), &Notification{Type: TypeEmail, Recipient: "other@example.com", Body: "3"})

	list, err := mgr.ListByRecipient(context.Background(), "ana@example.com", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("len = %d, want 2", len(list))
	}
}
