package interchange

import (
	"encoding/json"
	"encoding/xml"
	"fmt"

	"github.com/kara-xyz/go-kara/command"
	"github.com/kara-xyz/go-kara/fsm"
	"github.com/kara-xyz/go-kara/world"
)

// The .kara schema references states by name, so names must be unique
// within a program. The stop state is implicit: it is never written as a
// state element and transitions reach it through the reserved target
// "stop". Conditions carry value "1" (required true) or "2" (required
// false); a detector the transition ignores is simply absent.
type xmlProgram struct {
	XMLName xml.Name   `xml:"program"`
	Start   string     `xml:"start,attr,omitempty"`
	States  []xmlState `xml:"state"`
}

type xmlState struct {
	Name        string          `xml:"name,attr"`
	Sensors     []xmlSensor     `xml:"sensor"`
	Transitions []xmlTransition `xml:"transition"`
}

type xmlSensor struct {
	Name string `xml:"name,attr"`
}

type xmlTransition struct {
	Target     string         `xml:"target,attr"`
	Conditions []xmlCondition `xml:"condition"`
	Actions    []xmlAction    `xml:"action"`
}

type xmlCondition struct {
	Sensor string `xml:"sensor,attr"`
	Value  string `xml:"value,attr"`
}

type xmlAction struct {
	Command string `xml:"command,attr"`
}

// stopTargetName is the reserved state name for the terminal state in the
// legacy format.
const stopTargetName = "stop"

// EncodeProgram serializes a program to the legacy XML format. The format
// cannot represent an explicit "don't care" condition, so those entries
// are dropped from the output; each drop is reported as a warning rather
// than silently discarded, because re-importing cannot tell an explicit
// wildcard from a detector that was never mentioned.
func EncodeProgram(p *fsm.Program) ([]byte, []string, error) {
	if p == nil {
		return nil, nil, fmt.Errorf("%w: nil program", ErrMalformed)
	}
	doc := xmlProgram{}
	var warnings []string

	seen := make(map[string]string, len(p.States))
	for _, st := range p.States {
		if prev, dup := seen[st.Name]; dup {
			return nil, nil, fmt.Errorf("%w: states %q and %q share the name %q",
				ErrMalformed, prev, st.ID, st.Name)
		}
		seen[st.Name] = st.ID
	}
	if p.StartID != "" {
		start := p.State(p.StartID)
		if start == nil {
			return nil, nil, fmt.Errorf("%w: start state %q not found", ErrMalformed, p.StartID)
		}
		doc.Start = start.Name
	}

	for _, st := range p.States {
		if st.ID == p.StopID {
			continue
		}
		xs := xmlState{Name: st.Name}
		for _, d := range stateSensors(st) {
			xs.Sensors = append(xs.Sensors, xmlSensor{Name: d.String()})
		}
		for _, tr := range st.Transitions {
			xt := xmlTransition{Target: targetName(p, tr.Target)}
			for _, d := range world.Detectors() {
				switch tr.Condition(d) {
				case fsm.Yes:
					xt.Conditions = append(xt.Conditions, xmlCondition{Sensor: d.String(), Value: "1"})
				case fsm.No:
					xt.Conditions = append(xt.Conditions, xmlCondition{Sensor: d.String(), Value: "2"})
				default:
					if _, explicit := tr.Conditions[d]; explicit {
						warnings = append(warnings, fmt.Sprintf(
							"state %q: explicit \"don't care\" on %s dropped, the XML format cannot represent it",
							st.Name, d))
					}
				}
			}
			for _, a := range tr.Actions {
				xt.Actions = append(xt.Actions, xmlAction{Command: a.String()})
			}
			xs.Transitions = append(xs.Transitions, xt)
		}
		doc.States = append(doc.States, xs)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("interchange: encode program: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), warnings, nil
}

// stateSensors returns the detectors any transition of the state tests,
// in canonical order.
func stateSensors(st *fsm.State) []world.Detector {
	used := make(map[world.Detector]bool)
	for _, tr := range st.Transitions {
		for _, d := range world.Detectors() {
			if tr.Condition(d) != fsm.Any {
				used[d] = true
			}
		}
	}
	var out []world.Detector
	for _, d := range world.Detectors() {
		if used[d] {
			out = append(out, d)
		}
	}
	return out
}

func targetName(p *fsm.Program, id string) string {
	if id == p.StopID {
		return stopTargetName
	}
	if st := p.State(id); st != nil {
		return st.Name
	}
	return id
}

// DecodeProgram parses the legacy XML program format. Imported states use
// their name as id, which the name-uniqueness rule makes safe.
func DecodeProgram(data []byte) (*fsm.Program, error) {
	var doc xmlProgram
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("interchange: parse program: %w", err)
	}
	return buildProgram(doc)
}

func buildProgram(doc xmlProgram) (*fsm.Program, error) {
	p := fsm.New()
	for _, xs := range doc.States {
		if xs.Name == stopTargetName {
			return nil, fmt.Errorf("%w: state name %q is reserved", ErrMalformed, stopTargetName)
		}
		if _, err := p.AddState(xs.Name, xs.Name); err != nil {
			return nil, fmt.Errorf("interchange: state %q: %w", xs.Name, err)
		}
	}

	for _, xs := range doc.States {
		for i, xt := range xs.Transitions {
			tr := &fsm.Transition{ID: fmt.Sprintf("%s.%d", xs.Name, i+1)}

			switch {
			case xt.Target == stopTargetName:
				tr.Target = p.StopID
			case p.State(xt.Target) != nil:
				tr.Target = xt.Target
			default:
				return nil, fmt.Errorf("%w: state %q: transition targets unknown state %q",
					ErrMalformed, xs.Name, xt.Target)
			}

			for _, xc := range xt.Conditions {
				d, ok := world.ParseDetector(xc.Sensor)
				if !ok {
					return nil, fmt.Errorf("%w: state %q: unknown sensor %q", ErrMalformed, xs.Name, xc.Sensor)
				}
				var cond fsm.Condition
				switch xc.Value {
				case "1":
					cond = fsm.Yes
				case "2":
					cond = fsm.No
				default:
					return nil, fmt.Errorf("%w: state %q: condition value %q, want \"1\" or \"2\"",
						ErrMalformed, xs.Name, xc.Value)
				}
				if tr.Conditions == nil {
					tr.Conditions = make(map[world.Detector]fsm.Condition)
				}
				tr.Conditions[d] = cond
			}

			for _, xa := range xt.Actions {
				cmd, ok := command.Parse(xa.Command)
				if !ok {
					return nil, fmt.Errorf("%w: state %q: unknown command %q", ErrMalformed, xs.Name, xa.Command)
				}
				tr.Actions = append(tr.Actions, cmd)
			}

			if err := p.AddTransition(xs.Name, tr); err != nil {
				return nil, fmt.Errorf("interchange: state %q: %w", xs.Name, err)
			}
		}
	}

	if doc.Start != "" {
		st := p.StateByName(doc.Start)
		if st == nil {
			return nil, fmt.Errorf("%w: start state %q not found", ErrMalformed, doc.Start)
		}
		if err := p.SetStart(st.ID); err != nil {
			return nil, fmt.Errorf("interchange: %w", err)
		}
	}
	return p, nil
}

// JSON mirror of the internal program shape. Unlike the XML format it
// keeps ids, the start id, and explicit wildcard conditions, so it
// round-trips losslessly.
type jsonProgram struct {
	Start  string      `json:"start,omitempty"`
	States []jsonState `json:"states"`
}

type jsonState struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Transitions []jsonTransition `json:"transitions,omitempty"`
}

type jsonTransition struct {
	ID         string            `json:"id,omitempty"`
	Target     string            `json:"target"`
	Conditions map[string]string `json:"conditions,omitempty"`
	Actions    []string          `json:"actions,omitempty"`
}

// EncodeProgramJSON serializes a program to the JSON mirror format.
func EncodeProgramJSON(p *fsm.Program) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil program", ErrMalformed)
	}
	doc := jsonProgram{Start: p.StartID}
	for _, st := range p.States {
		js := jsonState{ID: st.ID, Name: st.Name}
		for _, tr := range st.Transitions {
			jt := jsonTransition{ID: tr.ID, Target: tr.Target}
			for d, c := range tr.Conditions {
				if jt.Conditions == nil {
					jt.Conditions = make(map[string]string)
				}
				jt.Conditions[d.String()] = c.String()
			}
			for _, a := range tr.Actions {
				jt.Actions = append(jt.Actions, a.String())
			}
			js.Transitions = append(js.Transitions, jt)
		}
		doc.States = append(doc.States, js)
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("interchange: encode program: %w", err)
	}
	return append(out, '\n'), nil
}

// DecodeProgramJSON parses the JSON mirror of the program format.
func DecodeProgramJSON(data []byte) (*fsm.Program, error) {
	var doc jsonProgram
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("interchange: parse program: %w", err)
	}

	p := &fsm.Program{}
	ids := make(map[string]bool, len(doc.States))
	for _, js := range doc.States {
		if js.ID == "" {
			return nil, fmt.Errorf("%w: state %q has no id", ErrMalformed, js.Name)
		}
		if ids[js.ID] {
			return nil, fmt.Errorf("%w: duplicate state id %q", ErrMalformed, js.ID)
		}
		ids[js.ID] = true
		p.States = append(p.States, &fsm.State{ID: js.ID, Name: js.Name})
		if js.ID == fsm.StopStateID {
			p.StopID = js.ID
		}
	}
	if p.StopID == "" {
		return nil, fmt.Errorf("%w: program has no stop state", ErrMalformed)
	}

	for i, js := range doc.States {
		st := p.States[i]
		for _, jt := range js.Transitions {
			tr := &fsm.Transition{ID: jt.ID, Target: jt.Target}
			for name, val := range jt.Conditions {
				d, ok := world.ParseDetector(name)
				if !ok {
					return nil, fmt.Errorf("%w: state %q: unknown sensor %q", ErrMalformed, js.Name, name)
				}
				var cond fsm.Condition
				switch val {
				case "yes":
					cond = fsm.Yes
				case "no":
					cond = fsm.No
				case "any":
					cond = fsm.Any
				default:
					return nil, fmt.Errorf("%w: state %q: condition value %q", ErrMalformed, js.Name, val)
				}
				if tr.Conditions == nil {
					tr.Conditions = make(map[world.Detector]fsm.Condition)
				}
				tr.Conditions[d] = cond
			}
			for _, name := range jt.Actions {
				cmd, ok := command.Parse(name)
				if !ok {
					return nil, fmt.Errorf("%w: state %q: unknown command %q", ErrMalformed, js.Name, name)
				}
				tr.Actions = append(tr.Actions, cmd)
			}
			st.Transitions = append(st.Transitions, tr)
		}
	}
	p.StartID = doc.Start

	if report := fsm.Validate(p); !report.Valid {
		for _, iss := range report.Errors {
			// Shape errors only; a program without a start state is still
			// loadable, matching the XML path.
			if iss.Err == fsm.ErrNoStopState || iss.Err == fsm.ErrBadTarget || iss.Err == fsm.ErrStopTransition {
				return nil, fmt.Errorf("%w: %s", ErrMalformed, iss.Message)
			}
		}
	}
	return p, nil
}

// ReadProgram auto-detects the format and parses accordingly.
func ReadProgram(data []byte) (*fsm.Program, error) {
	switch DetectFormat(data) {
	case FormatXML:
		return DecodeProgram(data)
	case FormatJSON:
		return DecodeProgramJSON(data)
	default:
		return nil, ErrUnknownFormat
	}
}
