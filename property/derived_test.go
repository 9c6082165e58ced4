package property

import "testing"

func TestPricePerSqft(t *testing.T) {
	cases := []struct {
		name  string
		price float64
		area  float64
		want  float64
	}{
		{"even division", 250000, 1000, 250.0},
		{"rounded to two places", 100000, 3000, 33.33},
		{"zero area", 250000, 0, 0},
		{"negative area", 250000, -5, 0},
		{"zero price", 0, 1000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PricePerSqft(tc.price, tc.area); got != tc.want {
				t.Errorf("PricePerSqft(%v, %v) = %v, want %v", tc.price, tc.area, got, tc.want)
			}
		})
	}
}

func TestRegistrationAmount(t *testing.T) {
	if got := RegistrationAmount(1000000, 7.0); got != 70000 {
		t.Errorf("RegistrationAmount(1000000, 7.0) = %v, want 70000", got)
	}
	if got := RegistrationAmount(0, 7.0); got != 0 {
		t.Errorf("RegistrationAmount(0, 7.0) = %v, want 0", got)
	}
}

func TestStatusRibbon(t *testing.T) {
	for _, status := range []Status{StatusAvailable, StatusSold, StatusRented} {
		if StatusRibbon(status) == "" {
			t.Errorf("expected markup for status %q", status)
		}
	}
	if got := StatusRibbon(Status("archived")); got != "" {
		t.Errorf("expected empty ribbon for unknown status, got %q", got)
	}
	if got := StatusRibbon(""); got != "" {
		t.Errorf("expected empty ribbon for empty status, got %q", got)
	}
}
