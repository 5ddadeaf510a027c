package lims

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/CognitoIQ/go-clarity/xmltree"
)

// StepPlacements is the placement document of a step: the containers
// selected for the outputs and where each output goes.
type StepPlacements struct{ *Entity }

// StepPlacementSets is the resource type of step placement documents.
var StepPlacementSets = NewType(Kind{Name: "step-placements", Prefix: "stp", Tag: "placements"},
	func(e *Entity) *StepPlacements { return &StepPlacements{e} })

var (
	stepSelectedContainers = NewEntityListField("container", Containers, "selected-containers")
	stepOutputPlacements   = NewOutputPlacementField("output-placements")
)

// SelectedContainers returns the containers chosen to receive the
// step outputs.
func (p *StepPlacements) SelectedContainers(ctx context.Context) (*List[*Container], error) {
	return stepSelectedContainers.Get(ctx, p)
}

// PlacementList returns where each output of the step is placed.
func (p *StepPlacements) PlacementList(ctx context.Context) (*List[OutputPlacement], error) {
	return stepOutputPlacements.Get(ctx, p)
}

// SetPlacementList replaces the output placements and selects the
// distinct containers they use.
func (p *StepPlacements) SetPlacementList(ctx context.Context, ps []OutputPlacement) error {
	if err := stepOutputPlacements.Replace(ctx, p, ps); err != nil {
		return err
	}
	var (
		containers []*Container
		seen       = make(map[*Container]bool)
	)
	for _, op := range ps {
		if c := op.Location.Container; c != nil && !seen[c] {
			seen[c] = true
			containers = append(containers, c)
		}
	}
	return stepSelectedContainers.Replace(ctx, p, containers)
}

// StepActions lists what happens to each output of a step once it
// completes.
type StepActions struct{ *Entity }

// StepActionSets is the resource type of step action documents.
var StepActionSets = NewType(Kind{Name: "step-actions", Prefix: "stp", Tag: "actions"},
	func(e *Entity) *StepActions { return &StepActions{e} })

var (
	stepNextActions = NewAttributeListField("next-action", "next-actions")
	stepActionsStep = NewEntityField("step", Steps)
)

// NextActions returns one attribute map per artifact, holding keys
// such as artifact-uri, action and step-uri.
func (a *StepActions) NextActions(ctx context.Context) (*List[map[string]string], error) {
	return stepNextActions.Get(ctx, a)
}

// Step returns the step the actions belong to.
func (a *StepActions) Step(ctx context.Context) (*Step, error) {
	return lookupEntity(ctx, stepActionsStep, a)
}

// An Escalation is a request for review raised on a step.
type Escalation struct {
	Author    *Researcher
	Request   string
	Status    string // "Pending" or "Reviewed"
	Reviewer  *Researcher
	Answer    string
	Artifacts []*Artifact
}

// Escalation returns the escalation of the step, or nil. The
// escalated artifacts are loaded with one batch request.
func (a *StepActions) Escalation(ctx context.Context) (*Escalation, error) {
	e, err := load(ctx, a)
	if err != nil {
		return nil, err
	}
	el := child(e.root, xml.Name{Local: "escalation"})
	if el == nil {
		return nil, nil
	}
	esc := &Escalation{Status: "Pending"}
	if req := child(el, xml.Name{Local: "request"}); req != nil {
		esc.Author, esc.Request = escalationParty(e, req)
	}
	if rev := child(el, xml.Name{Local: "review"}); rev != nil {
		esc.Status = "Reviewed"
		esc.Reviewer, esc.Answer = escalationParty(e, rev)
	}
	var rs []Resource
	for _, holder := range children(el, xml.Name{Local: "escalated-artifacts"}) {
		for _, c := range holder.Children {
			if uri, ok := c.LookupAttr("", "uri"); ok {
				art := Artifacts.ByURI(e.session, uri)
				esc.Artifacts = append(esc.Artifacts, art)
				rs = append(rs, art)
			}
		}
	}
	if err := e.session.GetBatch(ctx, rs...); err != nil {
		return nil, err
	}
	return esc, nil
}

func escalationParty(e *Entity, el *xmltree.Element) (*Researcher, string) {
	var r *Researcher
	if a := child(el, xml.Name{Local: "author"}); a != nil {
		if uri, ok := a.LookupAttr("", "uri"); ok {
			r = Researchers.ByURI(e.session, uri)
		}
	}
	comment, _ := el.ChildText("", "comment")
	return r, comment
}

// StepReagentLots lists the reagent lots used by a step.
type StepReagentLots struct{ *Entity }

// StepReagentLotSets is the resource type of step reagent lot
// documents.
var StepReagentLotSets = NewType(Kind{Name: "step-reagent-lots", Prefix: "stp", Tag: "lots"},
	func(e *Entity) *StepReagentLots { return &StepReagentLots{e} })

var stepReagentLots = NewEntityListField("reagent-lot", ReagentLots, "reagent-lots")

// ReagentLots returns the reagent lots recorded for the step.
func (l *StepReagentLots) ReagentLots(ctx context.Context) (*List[*ReagentLot], error) {
	return stepReagentLots.Get(ctx, l)
}

// StepDetails holds the inputs, outputs and fields of a step.
type StepDetails struct{ *Entity }

// StepDetailSets is the resource type of step detail documents.
var StepDetailSets = NewType(Kind{Name: "step-details", Prefix: "stp", Tag: "details"},
	func(e *Entity) *StepDetails { return &StepDetails{e} })

var (
	stepDetailsIOMaps = NewIOMapField("input-output-maps")
	stepDetailsUDF    = NewUDFField("fields")
	stepDetailsUDT    = NewUDTField("fields")
)

// InputOutputMaps returns the input/output pairs of the step.
func (d *StepDetails) InputOutputMaps(ctx context.Context) ([]IOMap, error) {
	return stepDetailsIOMaps.Get(ctx, d)
}

// UDF returns the step fields.
func (d *StepDetails) UDF(ctx context.Context) (*UDFDict, error) {
	return stepDetailsUDF.Get(ctx, d)
}
// UDT returns the user-defined type of the step details.
func (d *StepDetails) UDT(ctx context.Context) (*UDFDict, error) {
	return stepDetailsUDT.Get(ctx, d)
}

// StepProgramStatus reports the state of the last automation program
// triggered on a step.
type StepProgramStatus struct{ *Entity }

// StepProgramStatuses is the resource type of program status
// documents.
var StepProgramStatuses = NewType(Kind{Name: "step-program-status", Prefix: "stp", Tag: "program-status"},
	func(e *Entity) *StepProgramStatus { return &StepProgramStatus{e} })

var (
	programStatus  = NewStringField("status")
	programMessage = NewStringField("message")
)

// Status returns the program state, such as "RUNNING" or "OK".
func (s *StepProgramStatus) Status(ctx context.Context) (string, error) {
	return lookupString(ctx, programStatus, s)
}

// SetStatus changes the program status, such as OK or ERROR.
func (s *StepProgramStatus) SetStatus(ctx context.Context, v string) error {
	return programStatus.Set(ctx, s, v)
}

// Message returns the message the program reported.
func (s *StepProgramStatus) Message(ctx context.Context) (string, error) {
	return lookupString(ctx, programMessage, s)
}

// SetMessage changes the message shown to the user.
func (s *StepProgramStatus) SetMessage(ctx context.Context, v string) error {
	return programMessage.Set(ctx, s, v)
}

// A Step is a process being run through the lab's protocol steps.
// It shares its LIMS id with the process it creates.
type Step struct{ *Entity }

// Steps is the resource type of steps. New steps are created with
// CreateStep.
var Steps = NewType(Kind{Name: "step", Endpoint: "steps", Prefix: "stp", CreationTag: "step-creation"},
	func(e *Entity) *Step { return &Step{e} })

var (
	stepCurrentState  = NewStringAttrField("current-state")
	stepReagentLotDoc = NewEntityField("reagent-lots", StepReagentLotSets)
	stepActions       = NewEntityField("actions", StepActionSets)
	stepPlacements    = NewEntityField("placements", StepPlacementSets)
	stepDetails       = NewEntityField("details", StepDetailSets)
	stepProgramStatus = NewEntityField("program-status", StepProgramStatuses)
	stepConfiguration = NewEntityField("configuration", ProtocolSteps)
	stepDateStarted   = NewStringField("date-started")
	stepDateCompleted = NewStringField("date-completed")
	stepPrograms      = Nest("available-programs")
)

// CurrentState returns the name of the screen the step is on, such as
// "Placement" or "Record Details".
func (s *Step) CurrentState(ctx context.Context) (string, error) {
	return lookupAttr(ctx, stepCurrentState, s)
}

// Actions returns the next-action document of the step.
func (s *Step) Actions(ctx context.Context) (*StepActions, error) {
	return lookupEntity(ctx, stepActions, s)
}

// Placements returns the placement document of the step.
func (s *Step) Placements(ctx context.Context) (*StepPlacements, error) {
	return lookupEntity(ctx, stepPlacements, s)
}

// Details returns the input/output and field document of the step.
func (s *Step) Details(ctx context.Context) (*StepDetails, error) {
	return lookupEntity(ctx, stepDetails, s)
}

// ProgramStatus returns the status document of the last program
// run, or nil if none has run.
func (s *Step) ProgramStatus(ctx context.Context) (*StepProgramStatus, error) {
	return lookupEntity(ctx, stepProgramStatus, s)
}

// Configuration returns the protocol step the step runs.
func (s *Step) Configuration(ctx context.Context) (*ProtocolStep, error) {
	return lookupEntity(ctx, stepConfiguration, s)
}

// DateStarted returns the date the step was started.
func (s *Step) DateStarted(ctx context.Context) (string, error) {
	return lookupString(ctx, stepDateStarted, s)
}

// DateCompleted returns the date the step was completed, or "".
func (s *Step) DateCompleted(ctx context.Context) (string, error) {
	return lookupString(ctx, stepDateCompleted, s)
}

// ReagentLots returns the reagent lots used by the step, or nil if
// the step does not track lots.
func (s *Step) ReagentLots(ctx context.Context) ([]*ReagentLot, error) {
	doc, err := lookupEntity(ctx, stepReagentLotDoc, s)
	if err != nil || doc == nil {
		return nil, err
	}
	return entities(doc.ReagentLots(ctx))
}

// Process returns the process created by the step.
func (s *Step) Process() (*Process, error) {
	return Processes.ByID(s.session, s.ID())
}

// Advance moves the step to its next screen. The server's response
// replaces the document of s; an empty response leaves it as it was.
func (s *Step) Advance(ctx context.Context) error {
	e, err := load(ctx, s)
	if err != nil {
		return err
	}
	doc, err := e.session.transport.Append(ctx, e.uri+"/advance", e.root)
	if err != nil {
		return err
	}
	if doc != nil {
		e.root = doc
	}
	e.session.debugf("advanced step", "uri", e.uri)
	return nil
}

// A Program is an automation that can be triggered on a step.
type Program struct {
	Name string
	URI  string
}

// AvailablePrograms returns the programs that can be triggered on
// the current screen of the step.
func (s *Step) AvailablePrograms(ctx context.Context) ([]Program, error) {
	e, err := load(ctx, s)
	if err != nil {
		return nil, err
	}
	holder := stepPrograms.find(e.root)
	if holder == nil {
		return nil, nil
	}
	var result []Program
	for _, el := range children(holder, xml.Name{Local: "available-program"}) {
		result = append(result, Program{Name: el.Attr("", "name"), URI: el.Attr("", "uri")})
	}
	return result, nil
}

// TriggerProgram starts the available program called name and
// returns its status document.
func (s *Step) TriggerProgram(ctx context.Context, name string) (*StepProgramStatus, error) {
	progs, err := s.AvailablePrograms(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range progs {
		if p.Name != name {
			continue
		}
		doc, err := s.session.transport.Append(ctx, p.URI, nil)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, &MissingValueError{Kind: StepProgramStatuses.Name, Field: "uri"}
		}
		uri, ok := doc.LookupAttr("", "uri")
		if !ok {
			return nil, &MissingValueError{Kind: StepProgramStatuses.Name, Field: "uri"}
		}
		status := StepProgramStatuses.ByURI(s.session, uri)
		status.root = doc
		s.session.infof("triggered program", "step", s.uri, "program", name)
		return status, nil
	}
	return nil, &KeyNotFoundError{Key: name}
}

// SetPlacements selects containers for the outputs of the step,
// places the outputs, and POSTs the placements to the server.
func (s *Step) SetPlacements(ctx context.Context, containers []*Container, ps []OutputPlacement) (*StepPlacements, error) {
	sp := StepPlacementSets.ByURI(s.session, s.uri+"/placements")
	if err := stepOutputPlacements.Replace(ctx, sp, ps); err != nil {
		return nil, err
	}
	if err := stepSelectedContainers.Replace(ctx, sp, containers); err != nil {
		return nil, err
	}
	doc, err := sp.Post(ctx)
	if err != nil {
		return nil, err
	}
	if doc != nil {
		sp.root = doc
	}
	return sp, nil
}

// A StepRequest describes a step to start.
type StepRequest struct {
	Protocol *ProtocolStep
	Inputs   []*Artifact
	// ContainerType names the output container type. It may be
	// left empty when the protocol step permits a single type.
	ContainerType   string
	ReagentCategory string
}

// CreateStep starts a step running req.Protocol on the inputs.
func CreateStep(ctx context.Context, s *Session, req StepRequest) (*Step, error) {
	if req.Protocol == nil {
		return nil, &MissingValueError{Kind: Steps.Name, Field: "configuration"}
	}
	name, err := req.Protocol.Name(ctx)
	if err != nil {
		return nil, err
	}
	permitted, err := req.Protocol.PermittedContainers(ctx)
	if err != nil {
		return nil, err
	}
	containerType := req.ContainerType
	if containerType == "" && len(permitted) == 1 {
		containerType = permitted[0]
	}
	if containerType != "" && len(permitted) > 0 && !contains(permitted, containerType) {
		return nil, &InvalidKeyError{
			Key:    containerType,
			Reason: fmt.Sprintf("container type not permitted by step %q", name),
		}
	}
	return Steps.Create(ctx, s, func(st *Step) error {
		root := st.root
		root.NewChild(xml.Name{Local: "configuration"}, attr("uri", req.Protocol.uri)).Text = name
		if containerType != "" && len(permitted) > 0 {
			root.NewChild(xml.Name{Local: "container-type"}).Text = containerType
		}
		if req.ReagentCategory != "" {
			root.NewChild(xml.Name{Local: "reagent-category"}).Text = req.ReagentCategory
		}
		inputs := root.NewChild(xml.Name{Local: "inputs"})
		for _, a := range req.Inputs {
			if a == nil || a.uri == "" {
				return &MissingValueError{Kind: Artifacts.Name, Field: "uri"}
			}
			inputs.NewChild(xml.Name{Local: "input"}, attr("uri", a.uri))
		}
		return nil
	})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
