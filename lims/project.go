package lims

import "context"

// A Note is free text attached to a project or a sample.
type Note struct{ *Entity }

// Notes is the resource type of notes.
var Notes = NewType(Kind{Name: "note"},
	func(e *Entity) *Note { return &Note{e} })

var noteContent = NewStringField("")

// Content returns the text of the note.
func (n *Note) Content(ctx context.Context) (string, error) {
	return noteContent.Get(ctx, n)
}

// SetContent replaces the text of the note.
func (n *Note) SetContent(ctx context.Context, v string) error {
	return noteContent.Set(ctx, n, v)
}

// A File is a document stored by the LIMS and attached to another
// resource.
type File struct{ *Entity }

// Files is the resource type of files.
var Files = NewType(Kind{Name: "file", Endpoint: "files", Prefix: "file"},
	func(e *Entity) *File { return &File{e} })

var (
	fileAttachedTo       = NewStringField("attached-to")
	fileContentLocation  = NewStringField("content-location")
	fileOriginalLocation = NewStringField("original-location")
	fileIsPublished      = NewBoolField("is-published")
)

// AttachedTo returns the URI of the resource the file belongs to.
func (f *File) AttachedTo(ctx context.Context) (string, error) {
	return lookupString(ctx, fileAttachedTo, f)
}

// SetAttachedTo attaches the file to the resource at uri.
func (f *File) SetAttachedTo(ctx context.Context, uri string) error {
	return fileAttachedTo.Set(ctx, f, uri)
}

// ContentLocation returns where the server stores the file content.
func (f *File) ContentLocation(ctx context.Context) (string, error) {
	return lookupString(ctx, fileContentLocation, f)
}

// OriginalLocation returns the path the file was uploaded from.
func (f *File) OriginalLocation(ctx context.Context) (string, error) {
	return lookupString(ctx, fileOriginalLocation, f)
}

// SetOriginalLocation changes the recorded upload path.
func (f *File) SetOriginalLocation(ctx context.Context, v string) error {
	return fileOriginalLocation.Set(ctx, f, v)
}

// IsPublished reports whether the file is visible to LabLink users.
func (f *File) IsPublished(ctx context.Context) (bool, error) {
	return lookupBool(ctx, fileIsPublished, f)
}

// SetIsPublished publishes or withdraws the file.
func (f *File) SetIsPublished(ctx context.Context, v bool) error {
	return fileIsPublished.Set(ctx, f, v)
}

// A Project groups the samples submitted by a researcher.
type Project struct{ *Entity }

// Projects is the resource type of projects.
var Projects = NewType(Kind{Name: "project", Endpoint: "projects", Prefix: "prj"},
	func(e *Entity) *Project { return &Project{e} })

var (
	projectOpenDate    = NewStringField("open-date")
	projectCloseDate   = NewStringField("close-date")
	projectInvoiceDate = NewStringField("invoice-date")
	projectResearcher  = NewEntityField("researcher", Researchers)
)

// Name returns the name of the project.
func (p *Project) Name(ctx context.Context) (string, error) {
	return lookupString(ctx, nameField, p)
}

// SetName renames the project.
func (p *Project) SetName(ctx context.Context, v string) error {
	return nameField.Set(ctx, p, v)
}

// OpenDate returns the date the project was opened, as YYYY-MM-DD.
func (p *Project) OpenDate(ctx context.Context) (string, error) {
	return lookupString(ctx, projectOpenDate, p)
}

// SetOpenDate changes the open date.
func (p *Project) SetOpenDate(ctx context.Context, v string) error {
	return projectOpenDate.Set(ctx, p, v)
}

// CloseDate returns the date the project was closed, or "" while it
// is open.
func (p *Project) CloseDate(ctx context.Context) (string, error) {
	return lookupString(ctx, projectCloseDate, p)
}

// SetCloseDate closes the project on date v.
func (p *Project) SetCloseDate(ctx context.Context, v string) error {
	return projectCloseDate.Set(ctx, p, v)
}

// InvoiceDate returns the date the project was invoiced.
func (p *Project) InvoiceDate(ctx context.Context) (string, error) {
	return lookupString(ctx, projectInvoiceDate, p)
}

// Researcher returns the owner of the project, or nil.
func (p *Project) Researcher(ctx context.Context) (*Researcher, error) {
	return lookupEntity(ctx, projectResearcher, p)
}

// SetResearcher makes r the researcher responsible for the project.
func (p *Project) SetResearcher(ctx context.Context, r *Researcher) error {
	return projectResearcher.Set(ctx, p, r)
}

// UDF returns the user-defined fields of the project.
func (p *Project) UDF(ctx context.Context) (*UDFDict, error) {
	return rootUDF.Get(ctx, p)
}
// UDT returns the user-defined type of the project.
func (p *Project) UDT(ctx context.Context) (*UDFDict, error) {
	return rootUDT.Get(ctx, p)
}

// Files returns the files attached to the project.
func (p *Project) Files(ctx context.Context) (*List[*File], error) {
	return attachedFiles.Get(ctx, p)
}

// ExternalIDs returns the identifiers of the project in other systems.
func (p *Project) ExternalIDs(ctx context.Context) ([]ExternalID, error) {
	return externalIDs.Get(ctx, p)
}

// A Sample is customer material submitted to the lab. Its root
// artifact carries it through processes.
type Sample struct{ *Entity }

// Samples is the resource type of samples. New samples are created
// with CreateSample.
var Samples = NewType(Kind{Name: "sample", Endpoint: "samples", Prefix: "smp", CreationTag: "samplecreation"},
	func(e *Entity) *Sample { return &Sample{e} })

var (
	sampleDateReceived  = NewStringField("date-received")
	sampleDateCompleted = NewStringField("date-completed")
	sampleProject       = NewEntityField("project", Projects)
	sampleSubmitter     = NewEntityField("submitter", Researchers)
	sampleArtifact      = NewEntityField("artifact", Artifacts)
	sampleNotes         = NewEntityListField("note", Notes)
	sampleLocation      = NewLocationField("location")
)

// Name returns the name of the sample.
func (s *Sample) Name(ctx context.Context) (string, error) {
	return lookupString(ctx, nameField, s)
}

// SetName renames the sample.
func (s *Sample) SetName(ctx context.Context, v string) error {
	return nameField.Set(ctx, s, v)
}

// DateReceived returns the date the sample arrived, as YYYY-MM-DD.
func (s *Sample) DateReceived(ctx context.Context) (string, error) {
	return lookupString(ctx, sampleDateReceived, s)
}

// SetDateReceived changes the date the sample arrived.
func (s *Sample) SetDateReceived(ctx context.Context, v string) error {
	return sampleDateReceived.Set(ctx, s, v)
}

// DateCompleted returns the date work on the sample finished.
func (s *Sample) DateCompleted(ctx context.Context) (string, error) {
	return lookupString(ctx, sampleDateCompleted, s)
}

// Project returns the project of the sample, or nil.
func (s *Sample) Project(ctx context.Context) (*Project, error) {
	return lookupEntity(ctx, sampleProject, s)
}

// SetProject assigns the sample to project p.
func (s *Sample) SetProject(ctx context.Context, p *Project) error {
	return sampleProject.Set(ctx, s, p)
}

// Submitter returns the researcher who submitted the sample.
func (s *Sample) Submitter(ctx context.Context) (*Researcher, error) {
	return lookupEntity(ctx, sampleSubmitter, s)
}

// Artifact returns the root artifact of the sample.
func (s *Sample) Artifact(ctx context.Context) (*Artifact, error) {
	return lookupEntity(ctx, sampleArtifact, s)
}

// Notes returns the notes attached to the sample.
func (s *Sample) Notes(ctx context.Context) (*List[*Note], error) {
	return sampleNotes.Get(ctx, s)
}

// Files returns the files attached to the sample.
func (s *Sample) Files(ctx context.Context) (*List[*File], error) {
	return attachedFiles.Get(ctx, s)
}

// UDF returns the user-defined fields of the sample.
func (s *Sample) UDF(ctx context.Context) (*UDFDict, error) {
	return rootUDF.Get(ctx, s)
}
// UDT returns the user-defined type of the sample.
func (s *Sample) UDT(ctx context.Context) (*UDFDict, error) {
	return rootUDT.Get(ctx, s)
}

// ExternalIDs returns the identifiers of the sample in other systems.
func (s *Sample) ExternalIDs(ctx context.Context) ([]ExternalID, error) {
	return externalIDs.Get(ctx, s)
}

// CreateSample submits a new sample placed in well of container. The
// build function sets the remaining fields, typically the name and
// project.
func CreateSample(ctx context.Context, s *Session, c *Container, well string, build func(*Sample) error) (*Sample, error) {
	return Samples.Create(ctx, s, func(smp *Sample) error {
		if build != nil {
			if err := build(smp); err != nil {
				return err
			}
		}
		return sampleLocation.Set(ctx, smp, Location{Container: c, Well: well})
	})
}
