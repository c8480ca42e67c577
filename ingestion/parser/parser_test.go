package parser

import "testing"

func TestParse_CreateFormatA(t *testing.T) {
	body := "612345678\n2 robes\n15k\nBonapriso"
	result := Parse(body)

	if result.Kind != KindCreate {
		t.Fatalf("expected KindCreate, got %v", result.Kind)
	}
	if result.Create.Phone != "612345678" {
		t.Errorf("phone = %q", result.Create.Phone)
	}
	if result.Create.AmountDue != 15000 {
		t.Errorf("amount_due = %d, want 15000", result.Create.AmountDue)
	}
	if result.Create.Quartier != "Bonapriso" {
		t.Errorf("quartier = %q", result.Create.Quartier)
	}
}

func TestParse_UpdateDelivered(t *testing.T) {
	result := Parse("Livré")
	if result.Kind != KindUpdate {
		t.Fatalf("expected KindUpdate, got %v", result.Kind)
	}
	if result.Update.Variant != VariantDelivered {
		t.Errorf("variant = %v", result.Update.Variant)
	}
}

func TestParse_Collected(t *testing.T) {
	result := Parse("collecté 5k 655555555")
	if result.Kind != KindUpdate || result.Update.Variant != VariantCollected {
		t.Fatalf("got %+v", result)
	}
	if result.Update.Amount == nil || *result.Update.Amount != 5000 {
		t.Errorf("amount = %v", result.Update.Amount)
	}
	if result.Update.Phone != "655555555" {
		t.Errorf("phone = %q", result.Update.Phone)
	}
}

func TestParse_UpdateWinsOverCreateShape(t *testing.T) {
	// A body that looks create-shaped but contains an update trigger must
	// classify as update, since update is tried first.
	body := "612345678\nLivré\n15000\nBonapriso"
	result := Parse(body)
	if result.Kind != KindUpdate {
		t.Fatalf("expected update to win, got %v", result.Kind)
	}
	if result.Update.Phone != "612345678" {
		t.Fatalf("expected phone 612345678, got %q", result.Update.Phone)
	}
	if result.Update.Amount == nil || *result.Update.Amount != 15000 {
		t.Fatalf("expected amount 15000, got %v", result.Update.Amount)
	}
}

func TestParse_DeliveredDoesNotMisreadPhoneAsAmount(t *testing.T) {
	// No genuine amount token in the body: the phone digit run must not be
	// picked up by ExtractAmount just because it also satisfies amountRe.
	result := Parse("livré 612345678")
	if result.Kind != KindUpdate {
		t.Fatalf("expected update, got %v", result.Kind)
	}
	if result.Update.Phone != "612345678" {
		t.Fatalf("expected phone 612345678, got %q", result.Update.Phone)
	}
	if result.Update.Amount != nil {
		t.Fatalf("expected no amount, got %v", *result.Update.Amount)
	}
}

func TestParse_CollecteDoesNotMisreadPhoneAsAmount(t *testing.T) {
	result := Parse("collecte 612345678 15000")
	if result.Kind != KindUpdate {
		t.Fatalf("expected update, got %v", result.Kind)
	}
	if result.Update.Phone != "612345678" {
		t.Fatalf("expected phone 612345678, got %q", result.Update.Phone)
	}
	if result.Update.Amount == nil || *result.Update.Amount != 15000 {
		t.Fatalf("expected amount 15000, got %v", result.Update.Amount)
	}
}

func TestParse_PhoneBelowMinDigitsIsIgnored(t *testing.T) {
	result := Parse("12345678\nitems\n15000\nBonapriso")
	if result.Kind != KindIgnore {
		t.Errorf("expected Ignore for invalid phone, got %v", result.Kind)
	}
}

func TestParse_AmountBelowMinimumIsIgnored(t *testing.T) {
	result := Parse("hello there\njust some text\n50\nno phone here")
	if result.Kind != KindIgnore {
		t.Errorf("expected Ignore, got %v", result.Kind)
	}
}

func TestParse_EmptyBodyIsIgnored(t *testing.T) {
	if Parse("").Kind != KindIgnore {
		t.Error("expected Ignore for empty body")
	}
	if Parse(" \n ").Kind != KindIgnore {
		t.Error("expected Ignore for whitespace-only body")
	}
}

func TestExtractPhone(t *testing.T) {
	phone, ok := ExtractPhone("contact 612 34 56 78 please")
	if !ok || phone != "612345678" {
		t.Errorf("got %q, %v", phone, ok)
	}
}

func TestExtractAmount_KSuffix(t *testing.T) {
	n, ok := ExtractAmount("ca coute 15k")
	if !ok || n != 15000 {
		t.Errorf("got %d, %v", n, ok)
	}
}

func TestExtractAmount_BelowMinimumSkipped(t *testing.T) {
	_, ok := ExtractAmount("50")
	if ok {
		t.Error("expected amount below 100 to not match")
	}
}
