package incidents

import "time"

const DefaultCollection = "IncidenciasEU"

const (
	StatusOpen       = "ABIERTO"
	StatusInProgress = "EN_PROGRESO"
	StatusResolved   = "RESUELTO"
)

const (
	PriorityLow      = "BAJA"
	PriorityMedium   = "MEDIA"
	PriorityHigh     = "ALTA"
	PriorityCritical = "CRITICA"
)

// Incident is one document of the incident collection. Empty optional strings
// mean the field was absent in the source document.
type Incident struct {
	ID        string     `json:"id" yaml:"id"`
	CreatedAt *time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	Agent     string     `json:"nombreAgente,omitempty" yaml:"nombreAgente,omitempty"`
	Point     string     `json:"punto,omitempty" yaml:"punto,omitempty"`
	Note      string     `json:"observacion,omitempty" yaml:"observacion,omitempty"`
	Status    string     `json:"estado,omitempty" yaml:"estado,omitempty"`
	Priority  string     `json:"prioridad,omitempty" yaml:"prioridad,omitempty"`
	Evidence  string     `json:"evidenciaDataUrl,omitempty" yaml:"-"`
}

// CreatedUnix is zero for incidents without a known creation time.
func (i Incident) CreatedUnix() int64 {
	if i.CreatedAt == nil {
		return 0
	}
	return i.CreatedAt.Unix()
}

func (i Incident) HasEvidence() bool {
	return i.Evidence != ""
}

// RawRecord is a document as returned by a Source, before normalization.
type RawRecord struct {
	ID   string
	Data map[string]any
}
