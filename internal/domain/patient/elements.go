package patient

import "github.com/google/uuid"

func (e *EmergencyContact) ElementID() uuid.UUID     { return e.ID }
func (e *EmergencyContact) SetElementID(id uuid.UUID) { e.ID = id }

func (a *Ailment) ElementID() uuid.UUID     { return a.ID }
func (a *Ailment) SetElementID(id uuid.UUID) { a.ID = id }

func (a *Allergy) ElementID() uuid.UUID     { return a.ID }
func (a *Allergy) SetElementID(id uuid.UUID) { a.ID = id }

func (c *Condition) ElementID() uuid.UUID     { return c.ID }
func (c *Condition) SetElementID(id uuid.UUID) { c.ID = id }

func (s *Surgery) ElementID() uuid.UUID     { return s.ID }
func (s *Surgery) SetElementID(id uuid.UUID) { s.ID = id }

func (i *Immunization) ElementID() uuid.UUID     { return i.ID }
func (i *Immunization) SetElementID(id uuid.UUID) { i.ID = id }

func (l *LabReport) ElementID() uuid.UUID     { return l.ID }
func (l *LabReport) SetElementID(id uuid.UUID) { l.ID = id }

func (d *DiagnosticReport) ElementID() uuid.UUID     { return d.ID }
func (d *DiagnosticReport) SetElementID(id uuid.UUID) { d.ID = id }

func (m *Medication) ElementID() uuid.UUID     { return m.ID }
func (m *Medication) SetElementID(id uuid.UUID) { m.ID = id }

func (f *FamilyMember) ElementID() uuid.UUID     { return f.ID }
func (f *FamilyMember) SetElementID(id uuid.UUID) { f.ID = id }
