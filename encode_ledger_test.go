package finance

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestDecodeLedger(t *testing.T) {
	jsonlStream := `
{"command":"tx","date":"2025-01-05","id":"t1","type":"expense","amount":1200,"category":"groceries","description":"Big Basket"}
{"command":"budget","date":"2025-01-01","category":"groceries","amount":5000,"rollover":true}
{"command":"subscription","date":"2025-01-03","id":"s1","name":"Netflix","amount":649,"cycle":"monthly"}
{"command":"holding","date":"2025-01-10","symbol":"120503","kind":"fund","units":12.5,"amount":1000}
{"command":"price","date":"2025-01-10","symbol":"120503","price":80.1234}
{"command":"nwi","date":"2025-01-01","needs":50,"wants":30,"investments":15,"savings":5}
{"command":"learn","date":"2025-01-11","module":"budgeting","lesson":"intro"}
{"command":"notification","date":"2025-01-12","id":"n1","kind":"renewal","key":"renewal:s1:2025-02-03","message":"Netflix renews"}
{"command":"read","date":"2025-01-13","id":"n1"}
`
	ledger, err := DecodeLedger(strings.NewReader(jsonlStream), "INR")
	if err != nil {
		t.Fatalf("DecodeLedger() returned an unexpected error: %v", err)
	}
	if ledger.Len() != 9 {
		t.Fatalf("DecodeLedger() decoded wrong number of records. Got: %d, want: %d", ledger.Len(), 9)
	}

	// sorted by date, same day records keep their order.
	expectedTypes := []reflect.Type{
		reflect.TypeOf(Budget{}),
		reflect.TypeOf(NWITargets{}),
		reflect.TypeOf(Subscription{}),
		reflect.TypeOf(Transaction{}),
		reflect.TypeOf(Holding{}),
		reflect.TypeOf(Price{}),
		reflect.TypeOf(Learn{}),
		reflect.TypeOf(Notification{}),
		reflect.TypeOf(Read{}),
	}
	for i, rec := range ledger.Records() {
		if reflect.TypeOf(rec) != expectedTypes[i] {
			t.Errorf("Record %d has wrong type. Got: %T, want: %v", i+1, rec, expectedTypes[i])
		}
	}

	tx, ok := ledger.Transaction("t1")
	if !ok {
		t.Fatal("Transaction(t1) not found")
	}
	if !tx.Amount.Equal(INR(1200)) {
		t.Errorf("tx amount = %v, want %v (ledger currency by default)", tx.Amount, INR(1200))
	}

	sub, ok := ledger.Subscription("s1")
	if !ok {
		t.Fatal("Subscription(s1) not found")
	}
	if sub.Start != d("2025-01-03") || sub.Status != Active || sub.Category != Subscriptions {
		t.Errorf("subscription defaults not applied: %+v", sub)
	}

	if err := ledger.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestDecodeLedger_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown command", `{"command":"buy","date":"2025-01-01"}`, `line 1: unknown command "buy"`},
		{"invalid json", "\n{\"command\":", "line 2"},
		{"invalid date", `{"command":"tx","date":"01/01/2025"}`, "line 1"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeLedger(strings.NewReader(tc.input), "INR")
			if err == nil {
				t.Fatal("DecodeLedger() expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("DecodeLedger() error = %q, want it to contain %q", err, tc.want)
			}
		})
	}
}

func TestEncodeLedger_RoundTrip(t *testing.T) {
	lines := []string{
		`{"command":"budget","date":"2025-01-01","category":"groceries","amount":5000,"currency":"INR","rollover":true}`,
		`{"command":"nwi","date":"2025-01-01","needs":50,"wants":30,"investments":15,"savings":5}`,
		`{"command":"subscription","date":"2025-01-03","id":"s1","name":"Netflix","amount":649,"currency":"INR","cycle":"monthly","start":"2025-01-03","category":"subscriptions","status":"active"}`,
		`{"command":"tx","date":"2025-01-05","id":"t1","type":"expense","amount":1200.5,"currency":"INR","category":"groceries","description":"Big Basket","tags":["food"]}`,
		`{"command":"tx","date":"2025-01-05","memo":"bonus","id":"t2","type":"income","amount":90000,"currency":"INR","category":"salary"}`,
		`{"command":"holding","date":"2025-01-10","symbol":"120503","kind":"fund","units":12.5,"amount":1000,"currency":"INR"}`,
		`{"command":"price","date":"2025-01-10","symbol":"120503","price":80.1234}`,
		`{"command":"learn","date":"2025-01-11","module":"budgeting","score":80}`,
		`{"command":"notification","date":"2025-01-12","id":"n1","kind":"renewal","key":"renewal:s1:2025-02-03","message":"Netflix renews"}`,
		`{"command":"read","date":"2025-01-13","id":"n1"}`,
	}
	input := strings.Join(lines, "\n") + "\n"
	ledger, err := DecodeLedger(strings.NewReader(input), "INR")
	if err != nil {
		t.Fatalf("DecodeLedger() unexpected error: %v", err)
	}
	var buffer bytes.Buffer
	if err := EncodeLedger(&buffer, ledger); err != nil {
		t.Fatalf("EncodeLedger() unexpected error: %v", err)
	}
	if got := buffer.String(); got != input {
		t.Errorf("EncodeLedger() mismatch:\ngot:\n%s\nwant:\n%s", got, input)
	}
}

func TestEncodeLedger_Sorted(t *testing.T) {
	tx1 := expense("2025-08-03", 100, Dining, "late")
	tx2 := expense("2025-08-01", 200, Dining, "first")
	tx3 := expense("2025-08-01", 300, Dining, "second") // same day as tx2

	ledger := NewLedger("INR")
	ledger.Append(tx1, tx2, tx3)

	var want bytes.Buffer
	for _, tx := range []Transaction{tx2, tx3, tx1} {
		if err := EncodeRecord(&want, tx); err != nil {
			t.Fatalf("EncodeRecord() unexpected error: %v", err)
		}
	}
	var got bytes.Buffer
	if err := EncodeLedger(&got, ledger); err != nil {
		t.Fatalf("EncodeLedger() unexpected error: %v", err)
	}
	if got.String() != want.String() {
		t.Errorf("EncodeLedger() not sorted:\ngot:\n%s\nwant:\n%s", got.String(), want.String())
	}
}
