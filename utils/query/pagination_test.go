package query

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in        Params
		page, lim int
		offset    int
	}{
		{Params{}, 1, DefaultLimit, 0},
		{Params{Page: 3, Limit: 10}, 3, 10, 20},
		{Params{Page: -2, Limit: 1000}, 1, MaxLimit, 0},
	}
	for _, tc := range cases {
		p := tc.in
		p.Normalize()
		if p.Page != tc.page || p.Limit != tc.lim || p.Offset() != tc.offset {
			t.Errorf("Normalize(%+v) = page %d limit %d offset %d", tc.in, p.Page, p.Limit, p.Offset())
		}
	}
}

func TestLikeEscapesWildcards(t *testing.T) {
	if got := Like("50%_Off"); got != `%50\%\_off%` {
		t.Fatalf("Like = %q", got)
	}
}
