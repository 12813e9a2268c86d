package anki

import (
	"archive/zip"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DeckFields are the fields of the note type written by Deck.
var DeckFields = []string{"Manchu", "Latin", "English", "Source"}

const collectionSchema = `
CREATE TABLE col (
    id integer primary key, crt integer not null, mod integer not null,
    scm integer not null, ver integer not null, dty integer not null,
    usn integer not null, ls integer not null, conf text not null,
    models text not null, decks text not null, dconf text not null,
    tags text not null
);
CREATE TABLE notes (
    id integer primary key, guid text not null, mid integer not null,
    mod integer not null, usn integer not null, tags text not null,
    flds text not null, sfld integer not null, csum integer not null,
    flags integer not null, data text not null
);
CREATE TABLE cards (
    id integer primary key, nid integer not null, did integer not null,
    ord integer not null, mod integer not null, usn integer not null,
    type integer not null, queue integer not null, due integer not null,
    ivl integer not null, factor integer not null, reps integer not null,
    lapses integer not null, left integer not null, odue integer not null,
    odid integer not null, flags integer not null, data text not null
);
CREATE TABLE revlog (
    id integer primary key, cid integer not null, usn integer not null,
    ease integer not null, ivl integer not null, lastIvl integer not null,
    factor integer not null, time integer not null, type integer not null
);
CREATE TABLE graves (usn integer not null, oid integer not null, type integer not null)`

const (
	cardFront = `<div class="manchu">{{Manchu}}</div>`
	cardBack  = `{{FrontSide}}<hr id=answer><div>{{Latin}}</div><div>{{English}}</div><div class="source">{{Source}}</div>`
	cardCSS   = `.card { font-family: "Noto Sans Mongolian", sans-serif; font-size: 20px; text-align: center; }
.manchu { writing-mode: vertical-lr; font-size: 32px; }
.source { font-size: 12px; color: #888; }`
)

// Deck collects notes for a new .apkg file with a single deck and note type.
type Deck struct {
	Name  string
	notes [][]string
	now   func() time.Time
}

// NewDeck creates an empty deck.
func NewDeck(name string) *Deck {
	return &Deck{Name: name, now: time.Now}
}

// AddNote appends a note. Values map onto DeckFields in order; missing
// values are left empty and extra values are dropped.
func (d *Deck) AddNote(values ...string) {
	fields := make([]string, len(DeckFields))
	copy(fields, values)
	d.notes = append(d.notes, fields)
}

// Len returns the number of notes added.
func (d *Deck) Len() int {
	return len(d.notes)
}

// WriteFile builds the collection database and zips it to path.
func (d *Deck) WriteFile(path string) error {
	tempDir, err := os.MkdirTemp("", "manchu-anki-*")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "collection.anki2")
	if err := d.writeCollection(dbPath); err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	if err := addFile(zw, "collection.anki2", dbPath); err != nil {
		return fmt.Errorf("writing collection: %w", err)
	}
	w, err := zw.Create("media")
	if err != nil {
		return fmt.Errorf("writing media: %w", err)
	}
	if _, err := io.WriteString(w, "{}"); err != nil {
		return fmt.Errorf("writing media: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing zip: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

func (d *Deck) writeCollection(dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	defer db.Close()

	for _, stmt := range strings.Split(collectionSchema, ";") {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating collection schema: %w", err)
		}
	}

	now := d.now()
	base := now.UnixMilli()
	modelID, deckID := base, base+1

	models, decks, err := d.collectionJSON(modelID, deckID, now.Unix())
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO col VALUES (1, ?, ?, ?, 11, 0, 0, 0, '{}', ?, ?, '{}', '{}')`,
		now.Unix(), base, base, models, decks,
	); err != nil {
		return fmt.Errorf("writing col: %w", err)
	}

	for i, fields := range d.notes {
		noteID := base + 2 + int64(i)
		flds := strings.Join(fields, fieldSeparator)
		if _, err := tx.Exec(
			`INSERT INTO notes VALUES (?, ?, ?, ?, -1, '', ?, ?, ?, 0, '')`,
			noteID, guid(flds), modelID, now.Unix(), flds, fields[0], checksum(fields[0]),
		); err != nil {
			return fmt.Errorf("writing note %d: %w", i, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO cards VALUES (?, ?, ?, 0, ?, -1, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')`,
			noteID, noteID, deckID, now.Unix(), i+1,
		); err != nil {
			return fmt.Errorf("writing card %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing collection: %w", err)
	}
	return nil
}

func (d *Deck) collectionJSON(modelID, deckID, mod int64) (string, string, error) {
	flds := make([]map[string]any, len(DeckFields))
	for i, name := range DeckFields {
		flds[i] = map[string]any{
			"name": name, "ord": i, "sticky": false, "rtl": false,
			"font": "Arial", "size": 20, "media": []string{},
		}
	}

	models := map[string]any{
		strconv.FormatInt(modelID, 10): map[string]any{
			"id": modelID, "name": d.Name, "type": 0, "mod": mod, "usn": -1,
			"sortf": 0, "did": deckID, "flds": flds, "css": cardCSS,
			"tmpls": []map[string]any{{
				"name": "Card 1", "ord": 0, "qfmt": cardFront, "afmt": cardBack,
				"bqfmt": "", "bafmt": "", "did": nil,
			}},
			"latexPre": "", "latexPost": "", "tags": []string{}, "vers": []any{},
			"req": []any{[]any{0, "any", []int{0}}},
		},
	}

	deck := func(id int64, name string) map[string]any {
		return map[string]any{
			"id": id, "name": name, "desc": "", "mod": mod, "usn": -1, "conf": 1,
			"dyn": 0, "collapsed": false, "newToday": []int{0, 0}, "revToday": []int{0, 0},
			"lrnToday": []int{0, 0}, "timeToday": []int{0, 0}, "extendNew": 10, "extendRev": 50,
		}
	}
	decks := map[string]any{
		"1":                           deck(1, "Default"),
		strconv.FormatInt(deckID, 10): deck(deckID, d.Name),
	}

	m, err := json.Marshal(models)
	if err != nil {
		return "", "", fmt.Errorf("marshaling models: %w", err)
	}
	dk, err := json.Marshal(decks)
	if err != nil {
		return "", "", fmt.Errorf("marshaling decks: %w", err)
	}
	return string(m), string(dk), nil
}

func guid(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:5])
}

// checksum is the first 8 hex digits of the SHA-1 of the sort field.
func checksum(s string) int64 {
	sum := sha1.Sum([]byte(s))
	v, _ := strconv.ParseInt(hex.EncodeToString(sum[:4]), 16, 64)
	return v
}
