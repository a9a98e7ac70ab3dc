package finance

import (
	"testing"

	"github.com/etnz/finance/date"
)

func TestJsonObjectWriter_Order(t *testing.T) {
	var w jsonObjectWriter
	w.Append("command", CmdTx).Append("id", "t1").Append("amount", 12)
	got, err := w.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}
	if want := `{"command":"tx","id":"t1","amount":12}`; string(got) != want {
		t.Errorf("MarshalJSON() = %s, want %s", got, want)
	}
}

func TestJsonObjectWriter_Optional(t *testing.T) {
	var w jsonObjectWriter
	w.Optional("memo", "")
	w.Optional("rollover", false)
	w.Optional("tags", []string{})
	w.Optional("nwi", Bucket(""))
	w.Optional("subscription", nil)
	got, err := w.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}
	if string(got) != "{}" {
		t.Errorf("zero values were written: %s", got)
	}

	w.Optional("tags", []string{"trip"}).Optional("rollover", true)
	got, _ = w.MarshalJSON()
	if want := `{"tags":["trip"],"rollover":true}`; string(got) != want {
		t.Errorf("MarshalJSON() = %s, want %s", got, want)
	}
}

func TestJsonObjectWriter_Error(t *testing.T) {
	var w jsonObjectWriter
	w.Append("bad", make(chan int)).Append("id", "t1")
	if _, err := w.MarshalJSON(); err == nil {
		t.Error("MarshalJSON() succeeded with an unmarshalable value")
	}
}

func TestTransaction_MarshalJSON(t *testing.T) {
	tx := NewExpense(date.New(2025, 3, 2), M(420.5, "INR"), Groceries, "Big Basket")
	tx.ID = "t1"
	tx.Tags = []string{"weekly"}
	got, err := tx.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}
	want := `{"command":"tx","date":"2025-03-02","id":"t1","type":"expense","amount":420.5,"currency":"INR","category":"groceries","description":"Big Basket","tags":["weekly"]}`
	if string(got) != want {
		t.Errorf("MarshalJSON() =\n%s\nwant\n%s", got, want)
	}
}
