package interchange

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kara-xyz/go-kara/command"
	"github.com/kara-xyz/go-kara/fsm"
	"github.com/kara-xyz/go-kara/world"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		name string
		data string
		want Format
	}{
		{"xml declaration", "<?xml version=\"1.0\"?>\n<world/>", FormatXML},
		{"bare root tag", "<world width=\"3\" height=\"3\"/>", FormatXML},
		{"leading whitespace xml", "\n  <program/>", FormatXML},
		{"json object", "{\"width\": 3}", FormatJSON},
		{"json with bom", "\xef\xbb\xbf{\"width\": 3}", FormatJSON},
		{"plain text", "once upon a time", FormatUnknown},
		{"empty", "", FormatUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectFormat([]byte(tc.data)))
		})
	}
}

func testWorld(t *testing.T) *world.World {
	t.Helper()
	return world.Build(6, 4).
		Tree(2, 1).
		Tree(3, 1).
		Mushroom(4, 2).
		Clover(0, 3).
		Kara(1, 2, world.South).
		Inventory(2).
		Done()
}

func TestWorldXMLRoundTrip(t *testing.T) {
	w := testWorld(t)

	data, err := EncodeWorld(w)
	require.NoError(t, err)
	assert.Equal(t, FormatXML, DetectFormat(data))

	got, err := DecodeWorld(data)
	require.NoError(t, err)
	assert.True(t, w.Equal(got), "round-trip changed the world:\n%v\nvs\n%v", w, got)
}

func TestWorldJSONRoundTrip(t *testing.T) {
	w := testWorld(t)

	data, err := EncodeWorldJSON(w)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, DetectFormat(data))

	got, err := DecodeWorldJSON(data)
	require.NoError(t, err)
	assert.True(t, w.Equal(got))
}

func TestWorldReadAutoDetects(t *testing.T) {
	w := testWorld(t)

	xmlData, err := EncodeWorld(w)
	require.NoError(t, err)
	jsonData, err := EncodeWorldJSON(w)
	require.NoError(t, err)

	fromXML, err := ReadWorld(xmlData)
	require.NoError(t, err)
	fromJSON, err := ReadWorld(jsonData)
	require.NoError(t, err)
	assert.True(t, fromXML.Equal(fromJSON))

	_, err = ReadWorld([]byte("not a document"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDecodeWorldMissingBlocks(t *testing.T) {
	w, err := DecodeWorld([]byte(`<world width="3" height="2"/>`))
	require.NoError(t, err)
	assert.Equal(t, 3, w.Width)
	assert.Equal(t, 2, w.Height)
	assert.Equal(t, world.OffGrid, w.Character.Pos)
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			assert.Equal(t, world.Empty, w.Cell(x, y))
		}
	}
}

func TestDecodeWorldRejects(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"unclosed tag", `<world width="3" height="3">`},
		{"zero size", `<world width="0" height="3"/>`},
		{"tree off grid", `<world width="3" height="3"><trees><point x="9" y="0"/></trees></world>`},
		{"kara off grid", `<world width="3" height="3"><kara x="5" y="0" direction="1"/></world>`},
		{"bad direction", `<world width="3" height="3"><kara x="0" y="0" direction="7"/></world>`},
		{"kara on tree", `<world width="3" height="3"><trees><point x="1" y="1"/></trees><kara x="1" y="1" direction="0"/></world>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeWorld([]byte(tc.data))
			assert.Error(t, err)
		})
	}
}

func searchProgram(t *testing.T) *fsm.Program {
	t.Helper()
	p, err := fsm.Build().
		State("search", "Searching").
		When(fsm.If(world.OnLeaf, fsm.Yes)).
		Do(command.PickClover).
		GoTo(fsm.StopStateID).
		When(fsm.If(world.TreeFront, fsm.No)).
		Do(command.MoveForward).
		GoTo("search").
		Start("search").
		Done()
	require.NoError(t, err)
	return p
}

func TestProgramXMLRoundTrip(t *testing.T) {
	p := searchProgram(t)

	data, warnings, err := EncodeProgram(p)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	got, err := DecodeProgram(data)
	require.NoError(t, err)

	// Ids are volatile across the legacy format; compare structure through
	// names and behavior.
	assert.Equal(t, "Searching", got.State(got.StartID).Name)
	st := got.StateByName("Searching")
	require.NotNil(t, st)
	require.Len(t, st.Transitions, 2)

	first := st.Transitions[0]
	assert.Equal(t, got.StopID, first.Target)
	assert.Equal(t, fsm.Yes, first.Condition(world.OnLeaf))
	assert.Equal(t, []command.Command{command.PickClover}, first.Actions)

	second := st.Transitions[1]
	assert.Equal(t, st.ID, second.Target)
	assert.Equal(t, fsm.No, second.Condition(world.TreeFront))
	assert.Equal(t, []command.Command{command.MoveForward}, second.Actions)

	assert.True(t, fsm.Validate(got).Valid)
}

func TestProgramXMLUsesLegacyVocabulary(t *testing.T) {
	p, err := fsm.Build().
		State("work", "Working").
		When(fsm.If(world.OnLeaf, fsm.Yes)).
		Do(command.PickClover, command.PlaceClover, command.TurnRight).
		GoTo(fsm.StopStateID).
		Start("work").
		Done()
	require.NoError(t, err)

	data, _, err := EncodeProgram(p)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, `command="removeLeaf"`)
	assert.Contains(t, text, `command="putLeaf"`)
	assert.Contains(t, text, `command="turnRight"`)
	assert.Contains(t, text, `value="1"`)
	assert.Contains(t, text, `target="stop"`)
	assert.NotContains(t, text, "pickClover")
}

func TestProgramXMLWildcardWarning(t *testing.T) {
	p := fsm.New()
	_, err := p.AddState("s", "Spin")
	require.NoError(t, err)
	require.NoError(t, p.AddTransition("s", &fsm.Transition{
		ID:     "t1",
		Target: fsm.StopStateID,
		Conditions: map[world.Detector]fsm.Condition{
			world.TreeFront: fsm.Any, // explicit "don't care"
			world.OnLeaf:    fsm.Yes,
		},
		Actions: []command.Command{command.TurnLeft},
	}))
	require.NoError(t, p.SetStart("s"))

	data, warnings, err := EncodeProgram(p)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "treeFront")
	assert.NotContains(t, string(data), "treeFront")

	// The omission reads back as a wildcard, so behavior is preserved even
	// though the explicit marker is gone.
	got, err := DecodeProgram(data)
	require.NoError(t, err)
	tr := got.StateByName("Spin").Transitions[0]
	assert.Equal(t, fsm.Any, tr.Condition(world.TreeFront))
	assert.Equal(t, fsm.Yes, tr.Condition(world.OnLeaf))
}

func TestProgramXMLStateSensors(t *testing.T) {
	data, _, err := EncodeProgram(searchProgram(t))
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `<sensor name="treeFront">`)
	assert.Contains(t, text, `<sensor name="onLeaf">`)
}

func TestEncodeProgramRejectsDuplicateNames(t *testing.T) {
	p := fsm.New()
	p.States = append(p.States,
		&fsm.State{ID: "a", Name: "Twin"},
		&fsm.State{ID: "b", Name: "Twin"},
	)
	_, _, err := EncodeProgram(p)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeProgramRejects(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"unknown target", `<program start="A"><state name="A"><transition target="B"/></state></program>`},
		{"reserved name", `<program><state name="stop"/></program>`},
		{"unknown sensor", `<program><state name="A"><transition target="stop"><condition sensor="radar" value="1"/></transition></state></program>`},
		{"bad condition value", `<program><state name="A"><transition target="stop"><condition sensor="treeFront" value="9"/></transition></state></program>`},
		{"unknown command", `<program><state name="A"><transition target="stop"><action command="fly"/></transition></state></program>`},
		{"missing start state", `<program start="Ghost"><state name="A"><transition target="stop"/></state></program>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeProgram([]byte(tc.data))
			assert.Error(t, err)
		})
	}
}

func TestProgramJSONRoundTrip(t *testing.T) {
	p := searchProgram(t)
	// An explicit wildcard survives JSON, unlike XML.
	p.StateByName("Searching").Transitions[0].Conditions[world.TreeLeft] = fsm.Any

	data, err := EncodeProgramJSON(p)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, DetectFormat(data))

	got, err := DecodeProgramJSON(data)
	require.NoError(t, err)

	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("JSON round-trip mismatch (-want +got):\n%s", diff)
	}
	_, explicit := got.StateByName("Searching").Transitions[0].Conditions[world.TreeLeft]
	assert.True(t, explicit, "explicit wildcard lost in JSON round-trip")
}

func TestReadProgramAutoDetects(t *testing.T) {
	p := searchProgram(t)

	xmlData, _, err := EncodeProgram(p)
	require.NoError(t, err)
	jsonData, err := EncodeProgramJSON(p)
	require.NoError(t, err)

	fromXML, err := ReadProgram(xmlData)
	require.NoError(t, err)
	fromJSON, err := ReadProgram(jsonData)
	require.NoError(t, err)

	assert.Equal(t, len(fromXML.States), len(fromJSON.States))
	assert.True(t, fsm.Validate(fromXML).Valid)
	assert.True(t, fsm.Validate(fromJSON).Valid)
}
