package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/contact/entity"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/config"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/goerror"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/instrument"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/session"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/storage"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/validator"
)

// Smallest well-formed PNG prefix; enough for content sniffing.
var pngBytes = []byte("\x89PNG\r\n\x1a\n" + "rest-of-image")

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type seqNumberID struct{ n int64 }

func (g *seqNumberID) Generate() int64 {
	g.n++
	return g.n
}

type fakeConfig struct {
	config.Config

	strings map[string]string
	ints    map[string]int
	int64s  map[string]int64
}

func (c *fakeConfig) GetString(key string) string { return c.strings[key] }

func (c *fakeConfig) GetInt(key string) int { return c.ints[key] }

func (c *fakeConfig) GetInt64(key string) int64 { return c.int64s[key] }

func (c *fakeConfig) GetMinute(string) time.Duration { return 15 * time.Minute }

type contactKey struct {
	userID    int64
	contactID int64
}

type fakeRepoDB struct {
	contacts map[contactKey]entity.Contact
}

func (r *fakeRepoDB) CreateContact(_ context.Context, c entity.Contact) error {
	r.contacts[contactKey{c.UserID, c.ID}] = c
	return nil
}

func (r *fakeRepoDB) GetContactByID(_ context.Context, userID, contactID int64) (*entity.Contact, error) {
	c, ok := r.contacts[contactKey{userID, contactID}]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &c, nil
}

func (r *fakeRepoDB) GetContactList(_ context.Context, filter entity.ContactListFilter) ([]entity.Contact, int64, error) {
	var all []entity.Contact
	for k, c := range r.contacts {
		if k.userID != filter.UserID {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Query)) {
			continue
		}
		all = append(all, c)
	}

	total := int64(len(all))
	from := int(filter.Offset)
	if from > len(all) {
		from = len(all)
	}
	to := from + int(filter.Limit)
	if to > len(all) {
		to = len(all)
	}

	return all[from:to], total, nil
}

func (r *fakeRepoDB) UpdateContact(_ context.Context, c entity.Contact) error {
	k := contactKey{c.UserID, c.ID}
	if _, ok := r.contacts[k]; !ok {
		return goerror.ErrNotFound
	}
	r.contacts[k] = c
	return nil
}

func (r *fakeRepoDB) UpdateContactImage(_ context.Context, userID, contactID int64, imageKey string) error {
	k := contactKey{userID, contactID}
	c, ok := r.contacts[k]
	if !ok {
		return goerror.ErrNotFound
	}
	c.ImageKey = imageKey
	r.contacts[k] = c
	return nil
}

func (r *fakeRepoDB) DeleteContact(_ context.Context, userID, contactID int64) error {
	k := contactKey{userID, contactID}
	if _, ok := r.contacts[k]; !ok {
		return goerror.ErrNotFound
	}
	delete(r.contacts, k)
	return nil
}

type putCall struct {
	bucket string
	key    string
	opts   storage.PutOptions
	data   []byte
}

type fakeStorage struct {
	storage.Storage

	puts    []putCall
	deletes []string
}

func (s *fakeStorage) PutObject(_ context.Context, bucket, key string, r io.Reader, opts storage.PutOptions) (storage.ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}

	s.puts = append(s.puts, putCall{bucket: bucket, key: key, opts: opts, data: data})
	return storage.ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(data))}, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, _, key string) error {
	s.deletes = append(s.deletes, key)
	return nil
}

func (s *fakeStorage) PresignGet(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "https://signed.example.com/" + bucket + "/" + key, nil
}

type fixture struct {
	uc      *Usecase
	repoDB  *fakeRepoDB
	storage *fakeStorage
	p       session.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	f := &fixture{
		repoDB:  &fakeRepoDB{contacts: map[contactKey]entity.Contact{}},
		storage: &fakeStorage{},
		p:       session.Principal{UserID: 7, Email: "jane@example.com", Role: "USER"},
	}

	f.uc = New(Dependency{
		RepoDB:  f.repoDB,
		Storage: f.storage,
		Config: &fakeConfig{
			strings: map[string]string{
				"modules.contact.image_bucket":      "contact-images",
				"modules.contact.default_image_url": "https://cdn.example.com/contact.png",
			},
			ints:   map[string]int{"modules.contact.page_size": 6},
			int64s: map[string]int64{"modules.contact.image_max_size_bytes": 1024},
		},
		Validator:  v,
		UID:        &seqNumberID{},
		Clock:      fixedClock{now: time.Unix(1700000000, 0)},
		Instrument: instrument.NewNoop(),
	})

	return f
}

func (f *fixture) addContact(t *testing.T, userID int64, name string) entity.Contact {
	t.Helper()

	out, err := f.uc.Create(context.Background(), session.Principal{UserID: userID}, CreateInput{
		Name:  name,
		Phone: "+62 812-3456-789",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	c, err := f.repoDB.GetContactByID(context.Background(), userID, out.ContactID)
	if err != nil {
		t.Fatalf("GetContactByID() error = %v", err)
	}

	return *c
}

func assertBusinessError(t *testing.T, err error, wantMsg string, wantCode goerror.Code) {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %v, want *goerror.Error", err)
	}
	if gerr.Msg() != wantMsg {
		t.Fatalf("error message = %q, want %q", gerr.Msg(), wantMsg)
	}
	if gerr.Code() != wantCode {
		t.Fatalf("error code = %v, want %v", gerr.Code(), wantCode)
	}
}

func TestCreate(t *testing.T) {
	t.Run("SanitizesFreeTextFields", func(t *testing.T) {
		// Arrange
		f := newFixture(t)

		// Act
		out, err := f.uc.Create(context.Background(), f.p, CreateInput{
			Name:        "  Bob <b>Builder</b>  ",
			Email:       "Bob@Example.COM",
			Phone:       "0812345678",
			Description: "met at <script>conf</script>",
		})

		// Assert
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		c, err := f.repoDB.GetContactByID(context.Background(), f.p.UserID, out.ContactID)
		if err != nil {
			t.Fatalf("GetContactByID() error = %v", err)
		}
		if c.Name != "Bob &lt;b&gt;Builder&lt;/b&gt;" {
			t.Fatalf("Name = %q", c.Name)
		}
		if c.Email != "bob@example.com" {
			t.Fatalf("Email = %q", c.Email)
		}
		if c.Description != "met at &lt;script&gt;conf&lt;/script&gt;" {
			t.Fatalf("Description = %q", c.Description)
		}
		if c.UserID != f.p.UserID {
			t.Fatalf("UserID = %d, want %d", c.UserID, f.p.UserID)
		}
	})

	t.Run("RejectsBadPhone", func(t *testing.T) {
		// Arrange
		f := newFixture(t)

		// Act
		_, err := f.uc.Create(context.Background(), f.p, CreateInput{
			Name:  "Bob",
			Phone: "not-a-phone",
		})

		// Assert
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeInvalidInput {
			t.Fatalf("error = %v, want invalid input", err)
		}
	})
}

func TestList(t *testing.T) {
	t.Run("PagesThroughOwnContacts", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		for _, name := range []string{"Alice", "Bob", "Carol", "Dave", "Eve", "Frank", "Grace", "Heidi"} {
			f.addContact(t, f.p.UserID, name)
		}
		f.addContact(t, 99, "Other Owner")

		// Act
		out, err := f.uc.List(context.Background(), f.p, ListInput{Page: 2})

		// Assert
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if out.Total != 8 {
			t.Fatalf("Total = %d, want 8", out.Total)
		}
		if out.TotalPages != 2 {
			t.Fatalf("TotalPages = %d, want 2", out.TotalPages)
		}
		if len(out.Contacts) != 2 {
			t.Fatalf("page 2 has %d contacts, want 2", len(out.Contacts))
		}
		if out.PageSize != 6 {
			t.Fatalf("PageSize = %d, want 6", out.PageSize)
		}
	})

	t.Run("SearchesByNameCaseInsensitive", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		for _, name := range []string{"Alice Cooper", "Bob Marley", "Alicia Keys", "Carol King"} {
			f.addContact(t, f.p.UserID, name)
		}
		f.addContact(t, 99, "Alice Elsewhere")

		// Act
		out, err := f.uc.List(context.Background(), f.p, ListInput{Page: 1, Query: "  aLiC  "})

		// Assert
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if out.Total != 2 {
			t.Fatalf("Total = %d, want 2", out.Total)
		}
		for _, c := range out.Contacts {
			if !strings.Contains(strings.ToLower(c.Name), "alic") {
				t.Fatalf("contact %q does not match the search term", c.Name)
			}
			if c.UserID != f.p.UserID {
				t.Fatalf("contact %q belongs to user %d", c.Name, c.UserID)
			}
		}
	})

	t.Run("RejectsOverlongSearchTerm", func(t *testing.T) {
		// Arrange
		f := newFixture(t)

		// Act
		_, err := f.uc.List(context.Background(), f.p, ListInput{Page: 1, Query: strings.Repeat("a", 51)})

		// Assert
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeInvalidInput {
			t.Fatalf("error = %v, want invalid input", err)
		}
	})
}

func TestDetail(t *testing.T) {
	t.Run("OtherOwnersContactIsNotFound", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		c := f.addContact(t, 99, "Other Owner")

		// Act
		_, err := f.uc.Detail(context.Background(), f.p, c.ID)

		// Assert
		assertBusinessError(t, err, "Contact not found", goerror.CodeNotFound)
	})

	t.Run("SignsImageURL", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		c := f.addContact(t, f.p.UserID, "Alice")
		if err := f.repoDB.UpdateContactImage(context.Background(), f.p.UserID, c.ID, "contacts/7/1.png"); err != nil {
			t.Fatalf("UpdateContactImage() error = %v", err)
		}

		// Act
		out, err := f.uc.Detail(context.Background(), f.p, c.ID)

		// Assert
		if err != nil {
			t.Fatalf("Detail() error = %v", err)
		}
		want := "https://signed.example.com/contact-images/contacts/7/1.png"
		if out.ImageURL != want {
			t.Fatalf("ImageURL = %q, want %q", out.ImageURL, want)
		}
	})

	t.Run("FallsBackToDefaultImage", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		c := f.addContact(t, f.p.UserID, "Alice")

		// Act
		out, err := f.uc.Detail(context.Background(), f.p, c.ID)

		// Assert
		if err != nil {
			t.Fatalf("Detail() error = %v", err)
		}
		if out.ImageURL != "https://cdn.example.com/contact.png" {
			t.Fatalf("ImageURL = %q", out.ImageURL)
		}
	})
}

func TestUpdate(t *testing.T) {
	t.Run("ReplacesFields", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		c := f.addContact(t, f.p.UserID, "Alice")

		// Act
		err := f.uc.Update(context.Background(), f.p, UpdateInput{
			ContactID: c.ID,
			Name:      "Alice Cooper",
			Phone:     "+49 30 901820",
			Work:      "Engineer",
		})

		// Assert
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		got, err := f.repoDB.GetContactByID(context.Background(), f.p.UserID, c.ID)
		if err != nil {
			t.Fatalf("GetContactByID() error = %v", err)
		}
		if got.Name != "Alice Cooper" || got.Work != "Engineer" {
			t.Fatalf("contact after update = %+v", got)
		}
	})

	t.Run("OtherOwnersContactIsNotFound", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		c := f.addContact(t, 99, "Other Owner")

		// Act
		err := f.uc.Update(context.Background(), f.p, UpdateInput{
			ContactID: c.ID,
			Name:      "Hijack",
			Phone:     "0812345678",
		})

		// Assert
		assertBusinessError(t, err, "Contact not found", goerror.CodeNotFound)
	})
}

func TestDelete(t *testing.T) {
	// Arrange
	f := newFixture(t)
	c := f.addContact(t, f.p.UserID, "Alice")
	if err := f.repoDB.UpdateContactImage(context.Background(), f.p.UserID, c.ID, "contacts/7/1.png"); err != nil {
		t.Fatalf("UpdateContactImage() error = %v", err)
	}

	// Act
	if err := f.uc.Delete(context.Background(), f.p, c.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// Assert
	if _, err := f.repoDB.GetContactByID(context.Background(), f.p.UserID, c.ID); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("contact still present after delete, err = %v", err)
	}
	if len(f.storage.deletes) != 1 || f.storage.deletes[0] != "contacts/7/1.png" {
		t.Fatalf("storage deletes = %v", f.storage.deletes)
	}
}

func TestUploadImage(t *testing.T) {
	t.Run("StoresObjectAndUpdatesKey", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		c := f.addContact(t, f.p.UserID, "Alice")

		// Act
		out, err := f.uc.UploadImage(context.Background(), f.p, UploadImageInput{
			ContactID: c.ID,
			File:      bytes.NewReader(pngBytes),
		})

		// Assert
		if err != nil {
			t.Fatalf("UploadImage() error = %v", err)
		}
		if len(f.storage.puts) != 1 {
			t.Fatalf("stored %d objects, want 1", len(f.storage.puts))
		}

		put := f.storage.puts[0]
		if put.bucket != "contact-images" {
			t.Fatalf("bucket = %q", put.bucket)
		}
		if put.opts.ContentType != "image/png" {
			t.Fatalf("content type = %q", put.opts.ContentType)
		}

		got, err := f.repoDB.GetContactByID(context.Background(), f.p.UserID, c.ID)
		if err != nil {
			t.Fatalf("GetContactByID() error = %v", err)
		}
		if got.ImageKey != put.key {
			t.Fatalf("ImageKey = %q, want %q", got.ImageKey, put.key)
		}
		if out.ImageURL == "" {
			t.Fatal("expected a signed image URL")
		}
	})

	t.Run("RejectsNonImagePayload", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		c := f.addContact(t, f.p.UserID, "Alice")

		// Act
		_, err := f.uc.UploadImage(context.Background(), f.p, UploadImageInput{
			ContactID: c.ID,
			File:      bytes.NewReader([]byte("%PDF-1.4 definitely not an image")),
		})

		// Assert
		assertBusinessError(t, err, "Only JPEG, PNG and GIF images are allowed", goerror.CodeInvalidInput)
		if len(f.storage.puts) != 0 {
			t.Fatalf("stored %d objects, want 0", len(f.storage.puts))
		}
	})

	t.Run("RejectsOversizedPayload", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		c := f.addContact(t, f.p.UserID, "Alice")
		big := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, 2048)...)

		// Act
		_, err := f.uc.UploadImage(context.Background(), f.p, UploadImageInput{
			ContactID: c.ID,
			File:      bytes.NewReader(big),
		})

		// Assert
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeInvalidInput {
			t.Fatalf("error = %v, want invalid input", err)
		}
	})

	t.Run("ReplacingImageRemovesOldObject", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		c := f.addContact(t, f.p.UserID, "Alice")
		if err := f.repoDB.UpdateContactImage(context.Background(), f.p.UserID, c.ID, "contacts/7/old.jpg"); err != nil {
			t.Fatalf("UpdateContactImage() error = %v", err)
		}

		// Act
		_, err := f.uc.UploadImage(context.Background(), f.p, UploadImageInput{
			ContactID: c.ID,
			File:      bytes.NewReader(pngBytes),
		})

		// Assert
		if err != nil {
			t.Fatalf("UploadImage() error = %v", err)
		}
		if len(f.storage.deletes) != 1 || f.storage.deletes[0] != "contacts/7/old.jpg" {
			t.Fatalf("storage deletes = %v", f.storage.deletes)
		}
	})
}
