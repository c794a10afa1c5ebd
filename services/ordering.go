package services

import (
	"database/sql"

	"github.com/ProsperCoded/Mini-Jira-Clone/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// bucketOrder is the canonical listing order inside a bucket. Ties on "order"
// only exist for rows written outside this package.
const bucketOrder = `"order" ASC, created_at ASC, id ASC`

func inBucket(teamID uuid.UUID, status models.TaskStatus) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("team_id = ? AND status = ?", teamID, status)
	}
}

// nextOrder is 1 + MAX(order) over the bucket, or 0 when it is empty. Callers
// must hold the team lock.
func nextOrder(tx *gorm.DB, teamID uuid.UUID, status models.TaskStatus) (int, error) {
	var max sql.NullInt64
	row := tx.Model(&models.Task{}).
		Scopes(inBucket(teamID, status)).
		Select(`MAX("order")`).
		Row()
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

// loadBucket returns the bucket in canonical order, leaving out exclude.
func loadBucket(tx *gorm.DB, teamID uuid.UUID, status models.TaskStatus, exclude uuid.UUID) ([]models.Task, error) {
	var tasks []models.Task
	err := tx.Scopes(inBucket(teamID, status)).
		Where("id <> ?", exclude).
		Order(bucketOrder).
		Find(&tasks).Error
	return tasks, err
}

// renumber writes order = position for every task in ids whose stored order
// differs. skip is left for the caller to write.
func renumber(tx *gorm.DB, ids []uuid.UUID, current map[uuid.UUID]int, skip uuid.UUID) error {
	for i, id := range ids {
		if id == skip {
			continue
		}
		if order, ok := current[id]; ok && order == i {
			continue
		}
		if err := tx.Model(&models.Task{}).
			Where("id = ?", id).
			UpdateColumn("order", i).Error; err != nil {
			return err
		}
	}
	return nil
}

func bucketIDs(tasks []models.Task) ([]uuid.UUID, map[uuid.UUID]int) {
	ids := make([]uuid.UUID, len(tasks))
	orders := make(map[uuid.UUID]int, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
		orders[t.ID] = t.Order
	}
	return ids, orders
}

// compactBucket renumbers a bucket 0..n-1 after a task has left it.
func compactBucket(tx *gorm.DB, teamID uuid.UUID, status models.TaskStatus, exclude uuid.UUID) error {
	tasks, err := loadBucket(tx, teamID, status, exclude)
	if err != nil {
		return err
	}
	ids, orders := bucketIDs(tasks)
	return renumber(tx, ids, orders, uuid.Nil)
}

// placeTask moves task to position index of the status bucket. The destination
// is renumbered densely and, on a status change, the source bucket is compacted.
// task is updated in place with its new status and order. Callers must hold the
// team lock.
func placeTask(tx *gorm.DB, task *models.Task, status models.TaskStatus, index int) error {
	dest, err := loadBucket(tx, task.TeamID, status, task.ID)
	if err != nil {
		return err
	}
	ids, orders := bucketIDs(dest)
	ids, position := models.PlaceInBucket(ids, task.ID, index)

	if err := renumber(tx, ids, orders, task.ID); err != nil {
		return err
	}

	if status != task.Status {
		if err := compactBucket(tx, task.TeamID, task.Status, task.ID); err != nil {
			return err
		}
	}

	if err := tx.Model(task).Updates(map[string]interface{}{
		"status": status,
		"order":  position,
	}).Error; err != nil {
		return err
	}
	task.Status = status
	task.Order = position
	return nil
}
