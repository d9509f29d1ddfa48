package repository

import (
	"context"
	"strings"

	"lease_portal_backend/platform/phone"

	"golang.org/x/sync/errgroup"
)

// Resolving contacts per lease would cost O(N) queries for a page of N
// leases. The batch resolver instead walks the lease→contact→(email,phone)
// relation in a bounded number of bulk queries: one chunked pass for the
// lease/contact pairs, one for the contact rows, and two parallel ones for
// main emails and main phones.

// contactChunkSize bounds the number of lease keys per bulk query. Chunks are
// issued sequentially to bound store load; each chunk succeeds or fails as a
// whole.
const contactChunkSize = 800

// Contact is one tenant attached to a lease, with its main email and phone.
type Contact struct {
	ContactCode string
	FullName    string
	Email       *string
	Phone       *string
}

type contactPair struct {
	LeaseKey   int64
	ContactKey int64
}

// FirstName/LastName are nullable in the store; a missing part degrades to
// an empty string when the display name is assembled.
type contactRecord struct {
	Key       int64
	Code      string
	FirstName *string
	LastName  *string
	ObjectKey int64
}

// ResolveContacts resolves the contact lists for a page of leases. Every
// requested lease key is present in the result; a lease without contacts maps
// to an empty list. A store error on any bulk query fails the whole
// resolution: partial tenant data must never be silently returned.
func (r *Repository) ResolveContacts(ctx context.Context, leaseKeys []int64) (map[int64][]Contact, error) {
	if len(leaseKeys) == 0 {
		return map[int64][]Contact{}, nil
	}

	pairs, err := r.fetchContactPairs(ctx, leaseKeys)
	if err != nil {
		return nil, err
	}

	contactKeys := dedupeInt64(pairsContactKeys(pairs))
	contacts, err := r.fetchContactRecords(ctx, contactKeys)
	if err != nil {
		return nil, err
	}

	objectKeys := dedupeInt64(recordObjectKeys(contacts))

	// Emails and phones have no data dependency on each other; fetch them
	// concurrently.
	var emails, phones map[int64]string
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		emails, err = r.fetchMainRows(groupCtx, "cmeml", "cmemlben", objectKeys)
		return err
	})
	group.Go(func() error {
		var err error
		phones, err = r.fetchMainRows(groupCtx, "cmtel", "cmtelben", objectKeys)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return assembleContacts(leaseKeys, pairs, contacts, emails, phones), nil
}

// fetchContactPairs loads the (leaseKey, contactKey) relation for the page,
// chunked to keep any single statement bounded. Pair order within a lease
// follows the link table's ordering column and is preserved to the output.
func (r *Repository) fetchContactPairs(ctx context.Context, leaseKeys []int64) ([]contactPair, error) {
	var pairs []contactPair
	for _, chunk := range chunkInt64(leaseKeys, contactChunkSize) {
		rows, err := r.pool.Query(ctx, `
			SELECT hc.keyhyavk, hc.keycmctc
			FROM hyctc hc
			WHERE hc.keyhyavk = ANY($1)
			ORDER BY hc.keyhyavk, hc.ordning
		`, chunk)
		if err != nil {
			return nil, err
		}

		for rows.Next() {
			var pair contactPair
			if err := rows.Scan(&pair.LeaseKey, &pair.ContactKey); err != nil {
				rows.Close()
				return nil, err
			}
			pairs = append(pairs, pair)
		}
		rows.Close()
		if rows.Err() != nil {
			return nil, rows.Err()
		}
	}
	return pairs, nil
}

func (r *Repository) fetchContactRecords(ctx context.Context, contactKeys []int64) (map[int64]contactRecord, error) {
	records := make(map[int64]contactRecord, len(contactKeys))
	if len(contactKeys) == 0 {
		return records, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT keycmctc, cmctcben, fnamn, enamn, keycmobj
		FROM cmctc
		WHERE keycmctc = ANY($1)
	`, contactKeys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rec contactRecord
		if err := rows.Scan(&rec.Key, &rec.Code, &rec.FirstName, &rec.LastName, &rec.ObjectKey); err != nil {
			return nil, err
		}
		records[rec.Key] = rec
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// fetchMainRows loads the row flagged main per contact object from an
// email-shaped or phone-shaped table. Zero rows is not an error; the fields
// simply degrade to null.
func (r *Repository) fetchMainRows(ctx context.Context, table, column string, objectKeys []int64) (map[int64]string, error) {
	values := make(map[int64]string, len(objectKeys))
	if len(objectKeys) == 0 {
		return values, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT keycmobj, `+column+`
		FROM `+table+`
		WHERE keycmobj = ANY($1) AND huvudrad = 1
	`, objectKeys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key int64
		var value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		// The schema permits several rows flagged main; first wins.
		if _, exists := values[key]; !exists {
			values[key] = value
		}
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return values, nil
}

// assembleContacts builds the per-lease contact lists in memory, preserving
// the pair order from the link table. It is a pure function so the grouping
// logic is testable without a store.
func assembleContacts(
	leaseKeys []int64,
	pairs []contactPair,
	contacts map[int64]contactRecord,
	emails map[int64]string,
	phones map[int64]string,
) map[int64][]Contact {
	result := make(map[int64][]Contact, len(leaseKeys))
	for _, key := range leaseKeys {
		result[key] = []Contact{}
	}

	for _, pair := range pairs {
		rec, ok := contacts[pair.ContactKey]
		if !ok {
			// A dangling link row; the lease keeps its remaining contacts.
			continue
		}

		contact := Contact{
			ContactCode: rec.Code,
			FullName:    displayName(rec.FirstName, rec.LastName),
		}
		if email, ok := emails[rec.ObjectKey]; ok {
			contact.Email = &email
		}
		if raw, ok := phones[rec.ObjectKey]; ok {
			normalized := phone.NormalizeE164(raw)
			contact.Phone = &normalized
		}

		result[pair.LeaseKey] = append(result[pair.LeaseKey], contact)
	}
	return result
}

func displayName(first, last *string) string {
	var parts []string
	if first != nil && *first != "" {
		parts = append(parts, *first)
	}
	if last != nil && *last != "" {
		parts = append(parts, *last)
	}
	return strings.Join(parts, " ")
}

func pairsContactKeys(pairs []contactPair) []int64 {
	keys := make([]int64, 0, len(pairs))
	for _, pair := range pairs {
		keys = append(keys, pair.ContactKey)
	}
	return keys
}

func recordObjectKeys(records map[int64]contactRecord) []int64 {
	keys := make([]int64, 0, len(records))
	for _, rec := range records {
		keys = append(keys, rec.ObjectKey)
	}
	return keys
}

func dedupeInt64(keys []int64) []int64 {
	seen := make(map[int64]struct{}, len(keys))
	result := make([]int64, 0, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, key)
	}
	return result
}

func chunkInt64(keys []int64, size int) [][]int64 {
	if size < 1 {
		size = 1
	}
	var chunks [][]int64
	for start := 0; start < len(keys); start += size {
		end := start + size
		if end > len(keys) {
			end = len(keys)
		}
		chunks = append(chunks, keys[start:end])
	}
	return chunks
}
