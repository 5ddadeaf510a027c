package ordered

import (
	"errors"
	"reflect"
	"testing"
)

func TestKeys(t *testing.T) {
	m := map[string]int{"b": 2, "c": 3, "a": 1}
	if got := Keys(m); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Keys = %v", got)
	}
	if got := Keys(map[string]int(nil)); len(got) != 0 {
		t.Errorf("Keys(nil) = %v", got)
	}
}

func TestRange(t *testing.T) {
	m := map[string]int{"b": 2, "c": 3, "a": 1}
	var seen []int
	err := Range(m, func(k string, v int) error {
		seen = append(seen, v)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(seen, []int{1, 2, 3}) {
		t.Errorf("visited %v", seen)
	}

	stop := errors.New("stop")
	seen = nil
	err = Range(m, func(k string, v int) error {
		seen = append(seen, v)
		if k == "b" {
			return stop
		}
		return nil
	})
	if err != stop {
		t.Errorf("Range returned %v, want %v", err, stop)
	}
	if !reflect.DeepEqual(seen, []int{1, 2}) {
		t.Errorf("visited %v after stopping", seen)
	}
}
