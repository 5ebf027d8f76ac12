package directoryapi_test

import (
	"testing"

	"github.com/Abraxas-365/staffhub/pkg/directory/directoryapi"
	"github.com/Abraxas-365/staffhub/pkg/kernel"
)

func TestMetaOf(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		total     int
		wantPages int
		wantNext  *int
		wantPrev  *int
	}{
		{name: "first of three", page: 1, total: 45, wantPages: 3, wantNext: intp(2)},
		{name: "middle", page: 2, total: 45, wantPages: 3, wantNext: intp(3), wantPrev: intp(1)},
		{name: "last", page: 3, total: 45, wantPages: 3, wantPrev: intp(2)},
		{name: "empty", page: 1, total: 0, wantPages: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := directoryapi.MetaOf(kernel.NewPaginated([]int{}, tt.page, 20, tt.total))

			if meta.CurrentPage != tt.page || meta.TotalCount != tt.total || meta.TotalPages != tt.wantPages {
				t.Errorf("meta = %+v", meta)
			}
			if !sameInt(meta.NextPage, tt.wantNext) {
				t.Errorf("next_page = %v, want %v", deref(meta.NextPage), deref(tt.wantNext))
			}
			if !sameInt(meta.PrevPage, tt.wantPrev) {
				t.Errorf("prev_page = %v, want %v", deref(meta.PrevPage), deref(tt.wantPrev))
			}
		})
	}
}

func intp(n int) *int { return &n }

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
