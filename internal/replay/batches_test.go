package replay

import (
	"reflect"
	"testing"
)

func TestBatches(t *testing.T) {
	got, err := Batches(100, 105, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []BlockRange{
		{From: 100, To: 101},
		{From: 102, To: 103},
		{From: 104, To: 105},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("batches mismatch: %+v != %+v", got, want)
	}
}

func TestBatchesUneven(t *testing.T) {
	got, err := Batches(0, 4, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []BlockRange{{From: 0, To: 2}, {From: 3, To: 4}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("batches mismatch: %+v != %+v", got, want)
	}
}

func TestBatchesSingle(t *testing.T) {
	got, err := Batches(5, 5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []BlockRange{{From: 5, To: 5}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("batches mismatch: %+v != %+v", got, want)
	}
}

func TestBatchesInvalid(t *testing.T) {
	if _, err := Batches(10, 9, 1); err == nil {
		t.Fatalf("expected error for inverted range")
	}
	if _, err := Batches(1, 10, 0); err == nil {
		t.Fatalf("expected error for zero batch size")
	}
}
