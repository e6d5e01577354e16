package dto

type RosterResponse struct {
	ClassID   string  `json:"class_id"`
	MemberIDs []int64 `json:"member_ids"`
}
