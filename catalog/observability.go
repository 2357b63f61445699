package catalog

const (
	logMsgAuthorRegistered    = "catalog: author registered"
	logMsgBookRegistered      = "catalog: book registered"
	logMsgMemberRegistered    = "catalog: member registered"
	logMsgMemberStatusChanged = "catalog: member status changed"

	logAttrAuthorID = "author_id"
	logAttrBookID   = "book_id"
	logAttrMemberID = "member_id"
	logAttrISBN     = "isbn"
	logAttrStatus   = "status"
)
