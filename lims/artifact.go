package lims

import (
	"context"
	"encoding/xml"
	"net/url"
)

// An Artifact is an input or output of a process: an analyte, a
// result file, or a shared result file.
type Artifact struct{ *Entity }

// Artifacts is the resource type of artifacts.
var Artifacts = NewType(Kind{Name: "artifact", Endpoint: "artifacts", Prefix: "art"},
	func(e *Entity) *Artifact { return &Artifact{e} })

var (
	artifactType           = NewStringField("type")
	artifactOutputType     = NewStringField("output-type")
	artifactParentProcess  = NewEntityField("parent-process", Processes)
	artifactVolume         = NewStringField("volume")
	artifactConcentration  = NewStringField("concentration")
	artifactQCFlag         = NewStringField("qc-flag")
	artifactLocation       = NewLocationField("location")
	artifactWorkingFlag    = NewBoolField("working-flag")
	artifactSamples        = NewEntityListField("sample", Samples)
	artifactReagentLabels  = NewReagentLabelField()
	artifactWorkflowStages = Nest("workflow-stages")
)

// Name returns the name of the artifact.
func (a *Artifact) Name(ctx context.Context) (string, error) {
	return lookupString(ctx, nameField, a)
}

// SetName renames the artifact.
func (a *Artifact) SetName(ctx context.Context, v string) error {
	return nameField.Set(ctx, a, v)
}

// Type returns the artifact type, such as "Analyte" or "ResultFile".
func (a *Artifact) Type(ctx context.Context) (string, error) {
	return lookupString(ctx, artifactType, a)
}

// OutputType returns how the artifact was produced by its parent
// process, such as Analyte or ResultFile.
func (a *Artifact) OutputType(ctx context.Context) (string, error) {
	return lookupString(ctx, artifactOutputType, a)
}

// ParentProcess returns the process that produced the artifact, or
// nil for root artifacts of samples.
func (a *Artifact) ParentProcess(ctx context.Context) (*Process, error) {
	return lookupEntity(ctx, artifactParentProcess, a)
}

// Volume returns the volume text as recorded by the server.
func (a *Artifact) Volume(ctx context.Context) (string, error) {
	return lookupString(ctx, artifactVolume, a)
}

// Concentration returns the concentration text as recorded by the
// server.
func (a *Artifact) Concentration(ctx context.Context) (string, error) {
	return lookupString(ctx, artifactConcentration, a)
}

// QCFlag returns "PASSED", "FAILED" or "UNKNOWN".
func (a *Artifact) QCFlag(ctx context.Context) (string, error) {
	return lookupString(ctx, artifactQCFlag, a)
}

// SetQCFlag sets the QC flag, usually PASSED, FAILED or UNKNOWN.
func (a *Artifact) SetQCFlag(ctx context.Context, v string) error {
	return artifactQCFlag.Set(ctx, a, v)
}

// Location returns where the artifact is placed. The second result
// is false for artifacts without a location.
func (a *Artifact) Location(ctx context.Context) (Location, bool, error) {
	return artifactLocation.Lookup(ctx, a)
}

// SetLocation places the artifact in a container well.
func (a *Artifact) SetLocation(ctx context.Context, loc Location) error {
	return artifactLocation.Set(ctx, a, loc)
}

// Container returns the container holding the artifact, or nil.
func (a *Artifact) Container(ctx context.Context) (*Container, error) {
	loc, ok, err := a.Location(ctx)
	if err != nil || !ok {
		return nil, err
	}
	return loc.Container, nil
}

// WorkingFlag reports whether the artifact is still being worked on.
func (a *Artifact) WorkingFlag(ctx context.Context) (bool, error) {
	return lookupBool(ctx, artifactWorkingFlag, a)
}

// Samples returns the samples the artifact derives from. Pooled
// artifacts have more than one.
func (a *Artifact) Samples(ctx context.Context) (*List[*Sample], error) {
	return artifactSamples.Get(ctx, a)
}

// UDF returns the user-defined fields of the artifact.
func (a *Artifact) UDF(ctx context.Context) (*UDFDict, error) {
	return rootUDF.Get(ctx, a)
}

// Files returns the files attached to the artifact.
func (a *Artifact) Files(ctx context.Context) (*List[*File], error) {
	return attachedFiles.Get(ctx, a)
}

// ReagentLabels returns the names of the reagent labels, usually
// index names, applied to the artifact.
func (a *Artifact) ReagentLabels(ctx context.Context) ([]string, error) {
	return artifactReagentLabels.Get(ctx, a)
}

// AddReagentLabel attaches a reagent label, such as an index name.
func (a *Artifact) AddReagentLabel(ctx context.Context, name string) error {
	return artifactReagentLabels.Add(ctx, a, name)
}

// State returns the value of the state query parameter of the URI,
// or "" if there is none.
func (a *Artifact) State() string {
	u, err := url.Parse(a.uri)
	if err != nil {
		return ""
	}
	return u.Query().Get("state")
}

// Stateless returns the artifact addressed without a state. It
// returns a itself if the URI carries no state.
func (a *Artifact) Stateless() *Artifact {
	u, err := url.Parse(a.uri)
	if err != nil || !u.Query().Has("state") {
		return a
	}
	u.RawQuery = ""
	u.Fragment = ""
	return Artifacts.ByURI(a.session, u.String())
}

// A WorkflowStageStatus reports the progress of an artifact through
// one workflow stage.
type WorkflowStageStatus struct {
	Stage  *Stage
	Status string
	Name   string
}

// WorkflowStages returns the stages the artifact has been assigned
// to, with their status.
func (a *Artifact) WorkflowStages(ctx context.Context) ([]WorkflowStageStatus, error) {
	e, err := load(ctx, a)
	if err != nil {
		return nil, err
	}
	holder := artifactWorkflowStages.find(e.root)
	if holder == nil {
		return nil, nil
	}
	var result []WorkflowStageStatus
	for _, el := range children(holder, xml.Name{Local: "workflow-stage"}) {
		uri, ok := el.LookupAttr("", "uri")
		if !ok {
			return nil, &MissingValueError{Kind: e.kind.Name, Field: "workflow-stage/@uri"}
		}
		result = append(result, WorkflowStageStatus{
			Stage:  Stages.ByURI(e.session, uri),
			Status: el.Attr("", "status"),
			Name:   el.Attr("", "name"),
		})
	}
	return result, nil
}

// InputArtifacts returns the inputs of the parent process that the
// artifact was produced from.
func (a *Artifact) InputArtifacts(ctx context.Context) ([]*Artifact, error) {
	pp, err := a.ParentProcess(ctx)
	if err != nil || pp == nil {
		return nil, err
	}
	maps, err := pp.InputOutputMaps(ctx)
	if err != nil {
		return nil, err
	}
	var result []*Artifact
	for _, m := range maps {
		if m.Input == nil || m.Output == nil || m.Input.Artifact == nil {
			continue
		}
		if m.Output.LimsID() == a.ID() {
			result = append(result, m.Input.Artifact)
		}
	}
	return result, nil
}
