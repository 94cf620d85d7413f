package i18n

import "github.com/MrSnakeDoc/goodnews/internal/domain"

var dict = map[domain.Language]map[string]string{
	domain.LanguageEN: {
		"app_title":            "Thai Good News",
		"link_saved":           "Link saved",
		"link_updated":         "Link updated",
		"link_deleted":         "Link deleted",
		"link_exists":          "This link is already saved",
		"links_cleared":        "All links cleared",
		"shared_link_saved":    "Shared link saved",
		"validate_https":       "Please enter a valid https:// URL",
		"validate_title":       "A title or a URL is required",
		"validate_language":    "Language must be en or th",
		"validate_email":       "Please enter a valid email address",
		"import_result":        "Import: {added} added, {skipped} skipped",
		"unsupported_format":   "Unsupported format, use json or csv",
		"sync_result":          "Sync done: {up} up, {down} down",
		"sync_failed":          "Sync failed, please try again",
		"sync_permission_hint": "Sync was refused. Check that you are signed in with the right account.",
		"signin_link_sent":     "Check your inbox for the sign-in link",
		"confirm_email":        "Please confirm your email to finish signing in",
		"signin_invalid":       "This sign-in link is invalid or has expired",
		"signed_in":            "Signed in as {email}",
		"signed_out":           "Signed out",
		"unauthorized":         "Please sign in first",
		"not_found":            "Not found",
		"rate_limited":         "Too many requests, please wait",
		"update_available":     "A new version is available, please reload",
		"reload_started":       "Reloading seed links",
		"something_went_wrong": "Something went wrong, please reload",
		"invalid_request":      "The request is invalid",
		"too_large":            "The file is too large",
		"backup_started":       "Backup started",
		"forbidden":            "Access denied",
	},
	domain.LanguageTH: {
		"app_title":            "ข่าวดีไทย",
		"link_saved":           "บันทึกลิงก์แล้ว",
		"link_updated":         "แก้ไขลิงก์แล้ว",
		"link_deleted":         "ลบลิงก์แล้ว",
		"link_exists":          "ลิงก์นี้ถูกบันทึกไว้แล้ว",
		"links_cleared":        "ล้างลิงก์ทั้งหมดแล้ว",
		"shared_link_saved":    "บันทึกลิงก์ที่แชร์แล้ว",
		"validate_https":       "กรุณาใส่ลิงก์ https:// ที่ถูกต้อง",
		"validate_title":       "ต้องมีชื่อเรื่องหรือลิงก์",
		"validate_language":    "ภาษาต้องเป็น en หรือ th",
		"validate_email":       "กรุณาใส่อีเมลที่ถูกต้อง",
		"import_result":        "นำเข้า: เพิ่ม {added} ข้าม {skipped}",
		"unsupported_format":   "ไม่รองรับรูปแบบนี้ ใช้ json หรือ csv",
		"sync_result":          "ซิงค์เสร็จแล้ว: ส่งขึ้น {up} ดึงลง {down}",
		"sync_failed":          "ซิงค์ไม่สำเร็จ กรุณาลองใหม่",
		"sync_permission_hint": "การซิงค์ถูกปฏิเสธ ตรวจสอบว่าเข้าสู่ระบบด้วยบัญชีที่ถูกต้อง",
		"signin_link_sent":     "ตรวจสอบกล่องจดหมายเพื่อรับลิงก์เข้าสู่ระบบ",
		"confirm_email":        "กรุณายืนยันอีเมลเพื่อเข้าสู่ระบบให้เสร็จ",
		"signin_invalid":       "ลิงก์เข้าสู่ระบบไม่ถูกต้องหรือหมดอายุแล้ว",
		"signed_in":            "เข้าสู่ระบบเป็น {email}",
		"signed_out":           "ออกจากระบบแล้ว",
		"unauthorized":         "กรุณาเข้าสู่ระบบก่อน",
		"not_found":            "ไม่พบข้อมูล",
		"rate_limited":         "มีคำขอมากเกินไป กรุณารอสักครู่",
		"update_available":     "มีเวอร์ชันใหม่ กรุณาโหลดหน้าใหม่",
		"reload_started":       "กำลังโหลดลิงก์เริ่มต้นใหม่",
		"something_went_wrong": "เกิดข้อผิดพลาด กรุณาโหลดหน้าใหม่",
		"invalid_request":      "คำขอไม่ถูกต้อง",
		"too_large":            "ไฟล์มีขนาดใหญ่เกินไป",
		"backup_started":       "เริ่มสำรองข้อมูลแล้ว",
		"forbidden":            "ไม่อนุญาตให้เข้าถึง",
	},
}
