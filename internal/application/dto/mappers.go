package dto

import "github.com/santoshvandari/AccountingSystem/internal/domain/entity"

// NewUserResponse mapea la entidad sin exponer el hash.
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		FullName:    u.FullName,
		PhoneNumber: u.Phone,
		Role:        u.Role.String(),
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		DateJoined:  u.DateJoined,
		UpdatedAt:   u.UpdatedAt,
	}
}

// NewBillResponse mapea cabecera y líneas.
func NewBillResponse(b *entity.Bill) BillResponse {
	resp := BillResponse{
		ID:                 b.ID,
		BillNumber:         b.BillNumber,
		BilledTo:           b.BilledTo,
		CustomerAddress:    b.CustomerAddress,
		CustomerPhone:      b.CustomerPhone,
		CustomerEmail:      b.CustomerEmail,
		Subtotal:           b.Subtotal,
		TaxPercentage:      b.TaxPercentage,
		TaxAmount:          b.TaxAmount,
		DiscountPercentage: b.DiscountPercentage,
		DiscountAmount:     b.DiscountAmount,
		TotalAmount:        b.TotalAmount,
		PaymentMethod:      b.PaymentMethod,
		PaymentDetails:     b.PaymentDetails,
		Note:               b.Note,
		IssuedBy:           b.IssuedBy,
		IssuedAt:           b.IssuedAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
		Items:              make([]BillItemResponse, 0, len(b.Items)),
	}
	for _, it := range b.Items {
		resp.Items = append(resp.Items, BillItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
			Unit:        it.Unit,
			Notes:       it.Notes,
		})
	}
	return resp
}

// NewTransactionResponse mapea una transacción.
func NewTransactionResponse(t *entity.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:           t.ID,
		UserID:       t.UserID,
		ReceivedFrom: t.ReceivedFrom,
		Amount:       t.Amount,
		Note:         t.Note,
		Date:         t.Date.Format(DateLayout),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
