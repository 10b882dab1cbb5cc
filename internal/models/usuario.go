package models

// Rol representa el rol fijo de un usuario
type Rol string

const (
	RolDueno    Rol = "dueno"
	RolVendedor Rol = "vendedor"
	RolCliente  Rol = "cliente"
)

// Usuario representa un usuario registrado
type Usuario struct {
	ID       int64  `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	// Hash bcrypt, nunca se serializa
	Password string `json:"-" db:"password"`
	Email    string `json:"email" db:"email"`
	Rol      Rol    `json:"rol" db:"rol"`
}

// Identidad representa la identidad autenticada de un request.
// Se resuelve una vez por request y se pasa explícitamente a las
// operaciones del core; ninguna operación consulta identidad ambiente.
type Identidad struct {
	UsuarioID int64  `json:"usuario_id"`
	Username  string `json:"username"`
	Rol       Rol    `json:"rol"`
}

// MetodoPago representa un método de pago guardado del usuario
type MetodoPago struct {
	ID             int64  `json:"id" db:"id"`
	UsuarioID      int64  `json:"usuario_id" db:"usuario_id"`
	TipoTarjeta    string `json:"tipo_tarjeta" db:"tipo_tarjeta"`
	Ultimos4       string `json:"ultimos_4" db:"ultimos_4"`
	Predeterminado bool   `json:"predeterminado" db:"predeterminado"`
}

// LoginRequest representa las credenciales de inicio de sesión
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse representa la sesión creada
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Rol      Rol    `json:"rol"`
}
