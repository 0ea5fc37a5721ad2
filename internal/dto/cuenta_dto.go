package dto

type ResumenCuentaResponse struct {
	UserID        string               `json:"user_id"`
	PedidosTotal  int                  `json:"pedidos_total"`
	Pedidos       []OrderResponse      `json:"pedidos"`
	CuponesUsados []UserCouponResponse `json:"cupones_usados"`
}
