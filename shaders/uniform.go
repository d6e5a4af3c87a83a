package shaders

// Uniform is a resolved uniform of one specific program.
//
// Names that the program doesn't have (or that the driver optimized out) resolve
// to Location -1, and writing to such a uniform does nothing.
type Uniform struct {
	Name     string
	Location int32
	// Program is the id of the program this uniform was resolved from
	Program uint32
	// TextureUnit is the unit assigned by SetupTextures, -1 if this isn't a sampler
	TextureUnit int32
}

func (u *Uniform) IsValid() bool {
	return u.Location >= 0 && u.Program != 0
}

func invalidUniform(name string, program uint32) Uniform {
	return Uniform{
		Name:        name,
		Location:    -1,
		Program:     program,
		TextureUnit: -1,
	}
}
