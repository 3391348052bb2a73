package pheno

import (
	"bytes"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/phenosim/internal/errors"
)

func TestTableRoundTrip(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{0, 1, 2, 2, 1, 0.5})

	var buf bytes.Buffer
	if err := WriteTable(&buf, m, []string{"s1", "s2"}, nil); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "id,col1,col2,col3\n") {
		t.Errorf("unexpected header: %q", buf.String())
	}

	tab, err := ReadTable(&buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(tab.Rows) != 2 || tab.Rows[1] != "s2" {
		t.Errorf("unexpected row labels %v", tab.Rows)
	}
	if !mat.Equal(tab.Data, m) {
		t.Errorf("data mismatch: got %v", mat.Formatted(tab.Data))
	}
}

func TestTableFullPrecision(t *testing.T) {
	m := mat.NewDense(1, 3, []float64{1.0 / 3, 0.1 + 0.2, -2.718281828459045e-7})

	var buf bytes.Buffer
	if err := WriteTable(&buf, m, nil, nil); err != nil {
		t.Fatal(err)
	}
	tab, err := ReadTable(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(tab.Data, m) {
		t.Errorf("values changed on write: got %v", mat.Formatted(tab.Data))
	}
}

func TestReadTableErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"header only", "id,a,b\n"},
		{"no value columns", "id\ns1\n"},
		{"ragged", "id,a,b\ns1,1,2\ns2,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(tt.input))
			if !errors.IsDimension(err) {
				t.Errorf("expected dimension error, got %v", err)
			}
		})
	}

	if _, err := ReadTable(strings.NewReader("id,a\ns1,x\n")); err == nil {
		t.Error("expected parse error")
	}
}
