package timeinput

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    []string
		wantErr bool
	}{
		{"09:00", []string{"09:00"}, false},
		{"9:00", []string{"09:00"}, false},
		{"21:00, 09:00", []string{"09:00", "21:00"}, false},
		{"8:30 8:30;12:00", []string{"08:30", "12:00"}, false},
		{"", nil, true},
		{" , ", nil, true},
		{"09:00, noon", nil, true},
		{"25:00", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("%q\ngot:  %v\nwant: %v", tt.input, got, tt.want)
			}
		})
	}
}
