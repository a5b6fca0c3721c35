package repositories

import (
	"database/sql"
	"errors"

	intconfig "jamii/internal/config"
	"jamii/internal/domain"
	"jamii/internal/domain/models"
)

// LevyRepository reads levies. The settlement side treats levies as
// read-only; the only writer of their payment fields is LedgerWriter.
type LevyRepository struct {
	DB *sql.DB
}

func (r LevyRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const levyColumns = `l.id,
       l.community_id,
       l.unit_id,
       COALESCE(l.description,''),
       l.amount,
       COALESCE(l.due_date,''),
       l.status,
       COALESCE(l.payment_method,''),
       COALESCE(l.payment_reference,''),
       COALESCE(l.payment_date,'')`

func scanLevy(scan func(...any) error) (models.Levy, error) {
	var l models.Levy
	err := scan(
		&l.ID,
		&l.CommunityID,
		&l.UnitID,
		&l.Description,
		&l.Amount,
		&l.DueDate,
		&l.Status,
		&l.PaymentMethod,
		&l.PaymentReference,
		&l.PaymentDate,
	)
	if err != nil {
		return models.Levy{}, err
	}
	return l, nil
}

// Create inserts a new pending levy raised against a unit. Officers raise
// levies for their own community only; the caller supplies the community
// from the authenticated context, never from the request body.
func (r LevyRepository) Create(l *models.Levy) error {
	l.Status = models.LevyPending
	res, err := r.db().Exec(`
		INSERT INTO levies (community_id, unit_id, description, amount, due_date, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		l.CommunityID, l.UnitID, l.Description, l.Amount, l.DueDate, l.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = id
	return nil
}

// GetForResident loads a levy only when the requesting user's resident
// record occupies the levy's unit within the same community.
func (r LevyRepository) GetForResident(levyID int64, rc domain.RequestContext) (models.Levy, error) {
	row := r.db().QueryRow(`
		SELECT `+levyColumns+`
		FROM levies l
		JOIN residents res ON res.unit_id = l.unit_id AND res.community_id = l.community_id
		WHERE l.id=? AND l.community_id=? AND res.user_id=?
		LIMIT 1`, levyID, rc.CommunityID, rc.UserID)

	l, err := scanLevy(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Levy{}, domain.NotFoundError{Resource: "levy"}
		}
		return models.Levy{}, err
	}
	return l, nil
}

// ListForResident returns the resident's levies, newest due first.
func (r LevyRepository) ListForResident(rc domain.RequestContext) ([]models.Levy, error) {
	rows, err := r.db().Query(`
		SELECT `+levyColumns+`
		FROM levies l
		JOIN residents res ON res.unit_id = l.unit_id AND res.community_id = l.community_id
		WHERE l.community_id=? AND res.user_id=?
		ORDER BY l.due_date DESC, l.id DESC`, rc.CommunityID, rc.UserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Levy{}
	for rows.Next() {
		l, err := scanLevy(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
