package domain

import (
	"testing"
	"time"
)

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name     string
		current  Status
		progress int
		want     Status
	}{
		{"zero progress", StatusNotDone, 0, StatusNotDone},
		{"partial progress", StatusNotDone, 55, StatusNotDone},
		{"boundary 99", StatusDone, 99, StatusNotDone},
		{"full progress", StatusNotDone, 100, StatusDone},
		{"over full", StatusNotDone, 150, StatusDone},
		{"cancelled sticks at zero", StatusCancelled, 0, StatusCancelled},
		{"cancelled sticks at full", StatusCancelled, 100, StatusCancelled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveStatus(tc.current, tc.progress); got != tc.want {
				t.Fatalf("DeriveStatus(%s, %d) = %s, want %s", tc.current, tc.progress, got, tc.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"done", StatusDone, true},
		{" DONE ", StatusDone, true},
		{"not done", StatusNotDone, true},
		{"Not_Done", StatusNotDone, true},
		{"todo", StatusNotDone, true},
		{"pending", StatusNotDone, true},
		{"cancelled", StatusCancelled, true},
		{"someday", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseStatus(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseStatus(%q) = %s, %v; want %s, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseCategory(t *testing.T) {
	if c, ok := ParseCategory("work"); !ok || c != CategoryWork {
		t.Fatalf("ParseCategory(work) = %q, %v", c, ok)
	}
	if c, ok := ParseCategory("  FINANCE "); !ok || c != CategoryFinance {
		t.Fatalf("ParseCategory(FINANCE) = %q, %v", c, ok)
	}
	if _, ok := ParseCategory("groceries"); ok {
		t.Fatalf("unknown category must not parse")
	}
	if _, ok := ParseCategory(""); ok {
		t.Fatalf("blank category must report not-ok")
	}
}

func TestParsePermission(t *testing.T) {
	for _, valid := range []string{"read", "comment", "write", " Write "} {
		if _, ok := ParsePermission(valid); !ok {
			t.Fatalf("ParsePermission(%q) should parse", valid)
		}
	}
	// Derived levels are never grantable.
	for _, invalid := range []string{"owner", "none", "admin", ""} {
		if _, ok := ParsePermission(invalid); ok {
			t.Fatalf("ParsePermission(%q) should not parse", invalid)
		}
	}
}

func TestPermissionPredicates(t *testing.T) {
	cases := []struct {
		p                            Permission
		read, comment, write, manage bool
	}{
		{PermissionNone, false, false, false, false},
		{PermissionRead, true, false, false, false},
		{PermissionComment, true, true, false, false},
		{PermissionWrite, true, true, true, false},
		{PermissionOwner, true, true, true, true},
	}
	for _, tc := range cases {
		if tc.p.CanRead() != tc.read || tc.p.CanComment() != tc.comment ||
			tc.p.CanWrite() != tc.write || tc.p.CanManageShares() != tc.manage {
			t.Fatalf("predicates for %s = %v/%v/%v/%v, want %v/%v/%v/%v",
				tc.p, tc.p.CanRead(), tc.p.CanComment(), tc.p.CanWrite(), tc.p.CanManageShares(),
				tc.read, tc.comment, tc.write, tc.manage)
		}
	}
}

func TestNoteEffectivePermission(t *testing.T) {
	n := Note{
		OwnerID: "owner1",
		SharedWith: []ShareGrant{
			{UserID: "u2", Permission: PermissionComment},
			{UserID: "u3", Permission: PermissionWrite},
		},
	}
	if got := n.EffectivePermission("owner1"); got != PermissionOwner {
		t.Fatalf("owner = %s", got)
	}
	if got := n.EffectivePermission("u2"); got != PermissionComment {
		t.Fatalf("u2 = %s", got)
	}
	if got := n.EffectivePermission("u3"); got != PermissionWrite {
		t.Fatalf("u3 = %s", got)
	}
	if got := n.EffectivePermission("stranger"); got != PermissionNone {
		t.Fatalf("stranger = %s", got)
	}
	if got := n.EffectivePermission(""); got != PermissionNone {
		t.Fatalf("empty id = %s", got)
	}
}

func TestNormalizeMetadata(t *testing.T) {
	when := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	in := Metadata{
		"str":    "value",
		"num":    42,
		"flt":    1.5,
		"flag":   true,
		"when":   when,
		"whenP":  &when,
		"status": StatusDone,
		"perm":   PermissionWrite,
		"role":   RoleAdmin,
		"nested": Metadata{"inner": "x", "bad": make(chan int)},
		"plain":  map[string]any{"ok": 1},
		"nilVal": nil,
		"bad":    []string{"dropped"},
	}

	out := NormalizeMetadata(in)

	if out["str"] != "value" || out["num"] != 42 || out["flt"] != 1.5 || out["flag"] != true {
		t.Fatalf("scalar values mangled: %+v", out)
	}
	if out["when"] != "2026-03-14T09:30:00Z" || out["whenP"] != "2026-03-14T09:30:00Z" {
		t.Fatalf("times not stringified: %+v", out)
	}
	if out["status"] != "done" || out["perm"] != "write" || out["role"] != "admin" {
		t.Fatalf("enums not stringified: %+v", out)
	}
	nested, ok := out["nested"].(Metadata)
	if !ok || nested["inner"] != "x" {
		t.Fatalf("nested metadata not normalized: %+v", out["nested"])
	}
	if _, present := nested["bad"]; present {
		t.Fatalf("unsupported nested value should be dropped")
	}
	if plain, ok := out["plain"].(Metadata); !ok || plain["ok"] != 1 {
		t.Fatalf("plain maps should convert to Metadata: %+v", out["plain"])
	}
	for _, dropped := range []string{"nilVal", "bad"} {
		if _, present := out[dropped]; present {
			t.Fatalf("%s should be dropped", dropped)
		}
	}

	if got := NormalizeMetadata(nil); got == nil || len(got) != 0 {
		t.Fatalf("nil input should normalize to an empty map")
	}
}
