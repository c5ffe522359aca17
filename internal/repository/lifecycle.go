package repository

import (
	"time"

	"gorm.io/gorm"
)

// 记录生命周期状态机：active ↔ inactive，active/inactive → soft-deleted，
// soft-deleted → active（restore）。softDelete/restore 是仅有的同时修改两个
// 标志的路径，activate/deactivate 只动 is_active。

func setActive(db *gorm.DB, m interface{}, id interface{}, active bool) error {
	res := db.Model(m).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func softDelete(db *gorm.DB, m interface{}, id interface{}) error {
	res := db.Model(m).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"is_active":  false,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func restore(db *gorm.DB, m interface{}, id interface{}) error {
	res := db.Model(m).
		Where("id = ? AND is_deleted = ?", id, true).
		Updates(map[string]interface{}{
			"is_deleted": false,
			"is_active":  true,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// purgeBefore 物理清理：软删除且 updated_at 早于截止时间的记录。
// 重复执行时第二次找不到可删行，天然幂等。
func purgeBefore(db *gorm.DB, m interface{}, cutoff time.Time) (int64, error) {
	res := db.Where("is_deleted = ? AND updated_at < ?", true, cutoff).Delete(m)
	return res.RowsAffected, res.Error
}
