package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ProveedorRequest is used for create, update and the inline supplier of a compra.
type ProveedorRequest struct {
	Nombre   string  `json:"nombre"   validate:"required,max=200"`
	RUC      *string `json:"ruc"      validate:"omitempty,min=8,max=15"`
	Telefono *string `json:"telefono" validate:"omitempty,max=50"`
	Correo   *string `json:"correo"   validate:"omitempty,email"`
	Ciudad   *string `json:"ciudad"   validate:"omitempty,max=100"`
	Notas    *string `json:"notas"`
}

var ProveedorListado = ListadoConfig{
	DefaultPageSize: 10,
	MaxPageSize:     20,
	SortKeys:        []string{"nombre"},
	DefaultSort:     "nombre",
	DefaultDesc:     false,
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProveedorResponse struct {
	ID       string  `json:"id"`
	Nombre   string  `json:"nombre"`
	RUC      *string `json:"ruc"`
	Telefono *string `json:"telefono"`
	Correo   *string `json:"correo"`
	Ciudad   *string `json:"ciudad"`
	Notas    *string `json:"notas"`
}

// ProveedorResumen is the supplier projection embedded in compra rows.
type ProveedorResumen struct {
	ID     string  `json:"id"`
	Nombre string  `json:"nombre"`
	RUC    *string `json:"ruc"`
}
