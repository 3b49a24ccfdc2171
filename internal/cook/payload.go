package cook

// PayloadKind identifies a payload variant.
type PayloadKind string

const (
	KindMesh      PayloadKind = "mesh"
	KindCurve     PayloadKind = "curve"
	KindParticle  PayloadKind = "particle"
	KindVolume    PayloadKind = "volume"
	KindInstancer PayloadKind = "instancer"
)

// Payload is a sealed sum type over the payload kinds a part can carry.
// Only types in this package implement it.
type Payload interface {
	Kind() PayloadKind
	payload()
}

// MeshPayload wraps a mesh.
type MeshPayload struct{ Mesh *Mesh }

// CurvePayload wraps every curve of a part.
type CurvePayload struct{ Curves []Curve }

// ParticlePayload wraps a particle system.
type ParticlePayload struct{ Particle *Particle }

// VolumePayload wraps a volume grid.
type VolumePayload struct{ Volume *Volume }

// InstancerPayload wraps a part-level instancer.
type InstancerPayload struct{ Instancer *PartInstancer }

func (MeshPayload) Kind() PayloadKind      { return KindMesh }
func (CurvePayload) Kind() PayloadKind     { return KindCurve }
func (ParticlePayload) Kind() PayloadKind  { return KindParticle }
func (VolumePayload) Kind() PayloadKind    { return KindVolume }
func (InstancerPayload) Kind() PayloadKind { return KindInstancer }

func (MeshPayload) payload()      {}
func (CurvePayload) payload()     {}
func (ParticlePayload) payload()  {}
func (VolumePayload) payload()    {}
func (InstancerPayload) payload() {}

// Payloads returns every payload the part carries, always in the order
// mesh, curve, particle, volume, instancer. Never nil.
func (p *Part) Payloads() []Payload {
	out := []Payload{}
	if p.Mesh != nil {
		out = append(out, MeshPayload{Mesh: p.Mesh})
	}
	if len(p.Curves) > 0 {
		out = append(out, CurvePayload{Curves: p.Curves})
	}
	if p.Particle != nil {
		out = append(out, ParticlePayload{Particle: p.Particle})
	}
	if p.Volume != nil {
		out = append(out, VolumePayload{Volume: p.Volume})
	}
	if p.Instancer != nil {
		out = append(out, InstancerPayload{Instancer: p.Instancer})
	}
	return out
}
