package wmo

import "testing"

func TestDescribe(t *testing.T) {
	type test struct {
		code int
		want string
	}
	tests := map[string]test{
		"first":    {code: 0, want: "Cloud development not observed or not observable"},
		"haze":     {code: 5, want: "Haze"},
		"rain":     {code: 61, want: "Rain, not freezing, continuous, slight at time of observation"},
		"last":     {code: 99, want: "Thunderstorm, heavy, with hail at time of observation"},
		"negative": {code: -1, want: UnknownDescription},
		"too big":  {code: 100, want: UnknownDescription},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Describe(tc.code); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestDescribe_AllCodesPopulated(t *testing.T) {
	for code := 0; code < 100; code++ {
		if Describe(code) == "" {
			t.Errorf("code %d has no description", code)
		}
	}
}

func TestClassify(t *testing.T) {
	type test struct {
		code int
		want Category
	}
	tests := map[string]test{
		"clear":        {code: 0, want: CategoryCloudy},
		"overcast":     {code: 3, want: CategoryCloudy},
		"fog":          {code: 45, want: CategoryFog},
		"rime fog":     {code: 48, want: CategoryFog},
		"fog gap":      {code: 46, want: CategoryUnknown},
		"drizzle":      {code: 53, want: CategoryDrizzle},
		"rain":         {code: 63, want: CategoryRain},
		"snow":         {code: 75, want: CategorySnow},
		"showers":      {code: 81, want: CategoryShowers},
		"thunderstorm": {code: 95, want: CategoryThunderstorm},
		"out of range": {code: 120, want: CategoryUnknown},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Classify(tc.code); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCategory_Icon(t *testing.T) {
	if got := CategoryUnknown.Icon(); got != "?" {
		t.Errorf("expected ?, got %s", got)
	}
	if CategoryRain.Icon() != CategoryShowers.Icon() {
		t.Errorf("rain and showers should share an icon")
	}
}
