package services

import (
	"errors"
	"fmt"

	"classquest_go/database"
	"classquest_go/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate row-locks the selected rows for the rest of the transaction.
func lockForUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// RedemptionService handles spending points in the store. Stock decrement,
// redemption row, and the negative ledger entry commit as one transaction.
type RedemptionService struct {
	ledger *LedgerService
}

func NewRedemptionService() *RedemptionService {
	return &RedemptionService{ledger: NewLedgerService()}
}

// Redeem exchanges points for a store item. The balance check is a domain
// rule of the store, not of the ledger: penalties may still push a balance
// negative elsewhere.
func (rs *RedemptionService) Redeem(studentID, itemID uint, quantity int) (*models.Redemption, error) {
	if quantity <= 0 {
		quantity = 1
	}

	var redemption models.Redemption
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var item models.StoreItem
		if err := tx.Clauses(lockForUpdate()).First(&item, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		if !item.Active {
			return ErrItemUnavailable
		}
		if item.Stock < quantity {
			return ErrInsufficientStock
		}

		totalPrice := item.Price * quantity

		var balance int64
		if err := tx.Model(&models.PointsTransaction{}).
			Where("student_id = ?", studentID).
			Select("COALESCE(SUM(amount), 0)").Scan(&balance).Error; err != nil {
			return err
		}
		if int(balance) < totalPrice {
			return ErrInsufficientBalance
		}

		if err := tx.Model(&item).Update("stock", gorm.Expr("stock - ?", quantity)).Error; err != nil {
			return err
		}

		redemption = models.Redemption{
			StudentID:   studentID,
			StoreItemID: itemID,
			Quantity:    quantity,
			TotalPrice:  totalPrice,
			Status:      "pending",
		}
		if err := tx.Create(&redemption).Error; err != nil {
			return err
		}

		_, err := rs.ledger.AppendTx(tx, studentID, -totalPrice,
			fmt.Sprintf("Redeemed %dx %s", quantity, item.Name), models.SourceRedemption, nil, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &redemption, nil
}

// Cancel voids a pending redemption: stock returns and a compensating
// positive ledger row refunds the points. The original spend row stays in the
// ledger as history.
func (rs *RedemptionService) Cancel(redemptionID, cancelledByID uint) (*models.Redemption, error) {
	var redemption models.Redemption
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(lockForUpdate()).Preload("StoreItem").First(&redemption, redemptionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		if redemption.Status != "pending" {
			return ErrItemUnavailable
		}

		if err := tx.Model(&models.StoreItem{}).Where("id = ?", redemption.StoreItemID).
			Update("stock", gorm.Expr("stock + ?", redemption.Quantity)).Error; err != nil {
			return err
		}
		if err := tx.Model(&redemption).Update("status", "cancelled").Error; err != nil {
			return err
		}

		_, err := rs.ledger.AppendTx(tx, redemption.StudentID, redemption.TotalPrice,
			fmt.Sprintf("Refund for cancelled redemption #%d", redemption.ID),
			models.SourceRedemption, nil, &cancelledByID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &redemption, nil
}

// Fulfill marks a pending redemption as handed out.
func (rs *RedemptionService) Fulfill(redemptionID uint) (*models.Redemption, error) {
	var redemption models.Redemption
	if err := database.DB.First(&redemption, redemptionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if redemption.Status != "pending" {
		return nil, ErrItemUnavailable
	}
	if err := database.DB.Model(&redemption).Update("status", "fulfilled").Error; err != nil {
		return nil, err
	}
	return &redemption, nil
}
