package music

import "testing"

func TestResolveDeterministic(t *testing.T) {
	r := NewChordResolver()
	a := r.Resolve(GenrePunk, E, ModeMajor, RoleI, RowMain)
	b := r.Resolve(GenrePunk, E, ModeMajor, RoleI, RowMain)
	if a != b {
		t.Fatalf("same inputs resolved differently: %+v vs %+v", a, b)
	}
}

func TestResolvePunkGreenIsEPower(t *testing.T) {
	r := NewChordResolver()
	spec := r.Resolve(GenrePunk, E, ModeMajor, RoleForFret(FretGreen), RowMain)
	if spec.Root != E {
		t.Errorf("root = %s, want E", spec.Root.Name())
	}
	if spec.Quality != Power5 {
		t.Errorf("quality = %s, want power5", spec.Quality.Name())
	}

	var notes [4]uint8
	n := spec.MIDINotes(-1, &notes)
	if n != 2 {
		t.Fatalf("power chord has %d notes, want 2", n)
	}
	if notes[0] != 40 || notes[1] != 47 {
		t.Errorf("notes = %v, want [40 47 _ _]", notes)
	}
}

func TestRoleIntervals(t *testing.T) {
	cases := []struct {
		role HarmonicRole
		mode Mode
		want int
	}{
		{RoleI, ModeMajor, 0},
		{RoleIV, ModeMajor, 5},
		{RoleV, ModeMajor, 7},
		{RoleBVII, ModeMajor, 10},
		{RoleII, ModeMajor, 2},
		{RoleVI, ModeMajor, 9},
		{RoleVI, ModeMinor, 8},
	}
	for _, c := range cases {
		if got := roleInterval(c.role, c.mode); got != c.want {
			t.Errorf("roleInterval(%v, %v) = %d, want %d", c.role, c.mode, got, c.want)
		}
	}
}

func TestResolveMapCoversAllFrets(t *testing.T) {
	r := NewChordResolver()
	for _, g := range Genres() {
		m, err := r.ResolveMap(g, C, ModeMajor, RowMain, 0)
		if err != nil {
			t.Fatalf("%s: %v", g.Name(), err)
		}
		if len(m) != int(NumFrets) {
			t.Errorf("%s: map has %d frets, want %d", g.Name(), len(m), NumFrets)
		}
	}
}

func TestSoloRowOctaveUp(t *testing.T) {
	r := NewChordResolver()
	main := r.Resolve(GenreRock, A, ModeMajor, RoleI, RowMain)
	solo := r.Resolve(GenreRock, A, ModeMajor, RoleI, RowSolo)
	if solo.OctaveOffset != main.OctaveOffset+1 {
		t.Errorf("solo octave offset = %d, want %d", solo.OctaveOffset, main.OctaveOffset+1)
	}

	var mn, sn [4]uint8
	main.MIDINotes(-1, &mn)
	solo.MIDINotes(-1, &sn)
	if sn[0] != mn[0]+12 {
		t.Errorf("solo root = %d, want %d", sn[0], mn[0]+12)
	}
}

func TestOverrideTakesPrecedence(t *testing.T) {
	r := NewChordResolver()
	want := ChordSpec{Root: Fs, Quality: Sus4}
	r.SetOverride(3, FretRed, RowMain, want)

	m, err := r.ResolveMap(GenrePunk, E, ModeMajor, RowMain, 3)
	if err != nil {
		t.Fatal(err)
	}
	if m[FretRed] != want {
		t.Errorf("overridden fret = %+v, want %+v", m[FretRed], want)
	}

	// Other patterns and frets stay on the resolved defaults.
	other, _ := r.ResolveMap(GenrePunk, E, ModeMajor, RowMain, 0)
	if other[FretRed] == want {
		t.Error("override leaked into another pattern")
	}
	if m[FretGreen] != other[FretGreen] {
		t.Error("override changed an unrelated fret")
	}

	r.ClearOverride(3, FretRed, RowMain)
	m, _ = r.ResolveMap(GenrePunk, E, ModeMajor, RowMain, 3)
	if m[FretRed] == want {
		t.Error("override survived ClearOverride")
	}
}

func TestLoadPresetInvalidatesCache(t *testing.T) {
	r := NewChordResolver()
	before, _ := r.ResolveMap(GenreEDM, A, ModeMinor, RowMain, 0)
	if before[FretGreen].Quality != Minor {
		t.Fatalf("default EDM I quality = %s, want minor", before[FretGreen].Quality.Name())
	}

	p := DefaultPreset(GenreEDM)
	p.Qualities["I"] = Major
	r.LoadPreset(GenreEDM, p)

	after, _ := r.ResolveMap(GenreEDM, A, ModeMinor, RowMain, 0)
	if after[FretGreen].Quality != Major {
		t.Errorf("after preset reload quality = %s, want major", after[FretGreen].Quality.Name())
	}
}

func TestUnmappedRoleFallsBackToPower(t *testing.T) {
	r := NewChordResolver()
	p := DefaultPreset(GenrePop)
	delete(p.Qualities, "bVII")
	r.LoadPreset(GenrePop, p)

	spec := r.Resolve(GenrePop, C, ModeMajor, RoleBVII, RowMain)
	if spec.Quality != Power5 {
		t.Errorf("unmapped role quality = %s, want power5", spec.Quality.Name())
	}
	if spec.Root != As {
		t.Errorf("bVII of C = %s, want A#", spec.Root.Name())
	}
}
