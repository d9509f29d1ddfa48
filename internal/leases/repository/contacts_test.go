package repository

import (
	"reflect"
	"testing"
)

func namePtr(value string) *string {
	return &value
}

func TestAssembleContactsGroupsAndPreservesOrder(t *testing.T) {
	leaseKeys := []int64{10, 11, 12}
	pairs := []contactPair{
		{LeaseKey: 10, ContactKey: 100},
		{LeaseKey: 10, ContactKey: 101},
		{LeaseKey: 11, ContactKey: 101},
	}
	contacts := map[int64]contactRecord{
		100: {Key: 100, Code: "K-100", FirstName: namePtr("Anna"), LastName: namePtr("Lindqvist"), ObjectKey: 500},
		101: {Key: 101, Code: "K-101", FirstName: namePtr("Erik"), LastName: namePtr("Holm"), ObjectKey: 501},
	}
	emails := map[int64]string{500: "anna@example.se"}
	phones := map[int64]string{501: "+46701234567"}

	result := assembleContacts(leaseKeys, pairs, contacts, emails, phones)

	if len(result) != 3 {
		t.Fatalf("expected an entry per requested lease, got %d", len(result))
	}

	first := result[10]
	if len(first) != 2 {
		t.Fatalf("lease 10 should have 2 contacts, got %d", len(first))
	}
	if first[0].ContactCode != "K-100" || first[1].ContactCode != "K-101" {
		t.Errorf("link table order not preserved: %+v", first)
	}
	if first[0].FullName != "Anna Lindqvist" {
		t.Errorf("unexpected full name %q", first[0].FullName)
	}
	if first[0].Email == nil || *first[0].Email != "anna@example.se" {
		t.Errorf("lease 10 first contact should carry its main email: %+v", first[0])
	}
	if first[0].Phone != nil {
		t.Errorf("contact without main phone should stay nil: %+v", first[0])
	}
	if first[1].Phone == nil || *first[1].Phone != "+46701234567" {
		t.Errorf("lease 10 second contact should carry its main phone: %+v", first[1])
	}

	// The same contact attached to two leases appears under both.
	second := result[11]
	if len(second) != 1 || second[0].ContactCode != "K-101" {
		t.Errorf("shared contact missing from lease 11: %+v", second)
	}
}

func TestAssembleContactsEmptyListsAreNeverNil(t *testing.T) {
	result := assembleContacts([]int64{1, 2}, nil, nil, nil, nil)

	for _, key := range []int64{1, 2} {
		list, ok := result[key]
		if !ok {
			t.Fatalf("lease %d missing from result", key)
		}
		if list == nil {
			t.Errorf("lease %d contact list is nil, want empty slice", key)
		}
		if len(list) != 0 {
			t.Errorf("lease %d unexpectedly has contacts: %+v", key, list)
		}
	}
}

func TestAssembleContactsSkipsDanglingLinks(t *testing.T) {
	pairs := []contactPair{
		{LeaseKey: 1, ContactKey: 100},
		{LeaseKey: 1, ContactKey: 999}, // no contact row
	}
	contacts := map[int64]contactRecord{
		100: {Key: 100, Code: "K-100", FirstName: namePtr("Anna"), LastName: namePtr("Lindqvist"), ObjectKey: 500},
	}

	result := assembleContacts([]int64{1}, pairs, contacts, nil, nil)
	if len(result[1]) != 1 {
		t.Errorf("dangling link should be skipped, kept contacts: %+v", result[1])
	}
}

// The store allows NULL name parts; a contact missing either (or both) still
// resolves, with the display name built from whatever is present.
func TestAssembleContactsHandlesMissingNameParts(t *testing.T) {
	pairs := []contactPair{
		{LeaseKey: 1, ContactKey: 100},
		{LeaseKey: 1, ContactKey: 101},
		{LeaseKey: 1, ContactKey: 102},
	}
	contacts := map[int64]contactRecord{
		100: {Key: 100, Code: "K-100", LastName: namePtr("Lindqvist AB"), ObjectKey: 500},
		101: {Key: 101, Code: "K-101", FirstName: namePtr("Erik"), ObjectKey: 501},
		102: {Key: 102, Code: "K-102", ObjectKey: 502},
	}

	result := assembleContacts([]int64{1}, pairs, contacts, nil, nil)
	if len(result[1]) != 3 {
		t.Fatalf("contacts with missing name parts must still resolve, got %d", len(result[1]))
	}
	if got := result[1][0].FullName; got != "Lindqvist AB" {
		t.Errorf("missing first name: got %q, want %q", got, "Lindqvist AB")
	}
	if got := result[1][1].FullName; got != "Erik" {
		t.Errorf("missing last name: got %q, want %q", got, "Erik")
	}
	if got := result[1][2].FullName; got != "" {
		t.Errorf("both parts missing should yield empty name, got %q", got)
	}
}

// naiveResolve resolves one lease at a time from the same inputs. The batch
// assembly must produce exactly what the per-lease walk would.
func naiveResolve(
	leaseKey int64,
	pairs []contactPair,
	contacts map[int64]contactRecord,
	emails map[int64]string,
	phones map[int64]string,
) []Contact {
	result := []Contact{}
	for _, pair := range pairs {
		if pair.LeaseKey != leaseKey {
			continue
		}
		rec, ok := contacts[pair.ContactKey]
		if !ok {
			continue
		}
		contact := Contact{ContactCode: rec.Code, FullName: displayName(rec.FirstName, rec.LastName)}
		if email, ok := emails[rec.ObjectKey]; ok {
			contact.Email = &email
		}
		if phone, ok := phones[rec.ObjectKey]; ok {
			contact.Phone = &phone
		}
		result = append(result, contact)
	}
	return result
}

func TestAssembleContactsMatchesNaiveBaseline(t *testing.T) {
	// 50 leases referencing 30 distinct contacts, several shared.
	leaseKeys := make([]int64, 50)
	var pairs []contactPair
	contacts := make(map[int64]contactRecord)
	emails := make(map[int64]string)
	phones := make(map[int64]string)

	for i := range leaseKeys {
		leaseKeys[i] = int64(i + 1)
		first := int64(i % 30)
		second := int64((i + 7) % 30)
		pairs = append(pairs,
			contactPair{LeaseKey: leaseKeys[i], ContactKey: first},
			contactPair{LeaseKey: leaseKeys[i], ContactKey: second},
		)
	}
	for k := int64(0); k < 30; k++ {
		contacts[k] = contactRecord{Key: k, Code: "K", FirstName: namePtr("F"), LastName: namePtr("L"), ObjectKey: k + 1000}
		if k%2 == 0 {
			emails[k+1000] = "mail"
		}
		if k%3 == 0 {
			phones[k+1000] = "+46701234567"
		}
	}

	batched := assembleContacts(leaseKeys, pairs, contacts, emails, phones)

	for _, key := range leaseKeys {
		naive := naiveResolve(key, pairs, contacts, emails, phones)
		got := batched[key]
		if len(got) != len(naive) {
			t.Fatalf("lease %d: batch resolved %d contacts, naive %d", key, len(got), len(naive))
		}
		for i := range naive {
			if got[i].ContactCode != naive[i].ContactCode {
				t.Errorf("lease %d contact %d: %q vs naive %q", key, i, got[i].ContactCode, naive[i].ContactCode)
			}
			if (got[i].Email == nil) != (naive[i].Email == nil) {
				t.Errorf("lease %d contact %d: email presence diverges", key, i)
			}
			if (got[i].Phone == nil) != (naive[i].Phone == nil) {
				t.Errorf("lease %d contact %d: phone presence diverges", key, i)
			}
		}
	}
}

func TestDedupeInt64(t *testing.T) {
	got := dedupeInt64([]int64{3, 1, 3, 2, 1})
	want := []int64{3, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("dedupeInt64 = %v, want %v", got, want)
	}

	if got := dedupeInt64(nil); len(got) != 0 {
		t.Errorf("dedupe of nil should be empty, got %v", got)
	}
}

func TestChunkInt64(t *testing.T) {
	cases := []struct {
		size   int
		length int
		want   []int
	}{
		{800, 0, nil},
		{800, 1, []int{1}},
		{800, 800, []int{800}},
		{800, 801, []int{800, 1}},
		{800, 2400, []int{800, 800, 800}},
		{0, 3, []int{1, 1, 1}},
	}

	for _, tc := range cases {
		keys := make([]int64, tc.length)
		chunks := chunkInt64(keys, tc.size)
		if len(chunks) != len(tc.want) {
			t.Errorf("len %d size %d: got %d chunks, want %d", tc.length, tc.size, len(chunks), len(tc.want))
			continue
		}
		for i, chunk := range chunks {
			if len(chunk) != tc.want[i] {
				t.Errorf("len %d size %d: chunk %d has %d keys, want %d", tc.length, tc.size, i, len(chunk), tc.want[i])
			}
		}
	}
}

// A page of 50 leases sharing 30 contacts resolves in a fixed number of bulk
// statements: one pair chunk, one contact fetch and the two main-row fetches.
func TestResolutionQueryArithmetic(t *testing.T) {
	leaseKeys := make([]int64, 50)
	for i := range leaseKeys {
		leaseKeys[i] = int64(i)
	}

	if got := len(chunkInt64(leaseKeys, contactChunkSize)); got != 1 {
		t.Errorf("50 leases should fit one chunk, got %d", got)
	}

	// 50 leases referencing 30 distinct contacts dedupe to 30 keys.
	contactKeys := make([]int64, 0, 50)
	for i := 0; i < 50; i++ {
		contactKeys = append(contactKeys, int64(i%30))
	}
	if got := len(dedupeInt64(contactKeys)); got != 30 {
		t.Errorf("expected 30 distinct contact keys, got %d", got)
	}
}
