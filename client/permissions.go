package client

// EnrichWithPermissions marks, in place, which blogs the given user may
// remove. Ownerless blogs stay unremovable for everyone; a nil user clears
// every flag.
func EnrichWithPermissions(blogs []Blog, user *User) {
	for i := range blogs {
		owner := blogs[i].User
		blogs[i].CanRemove = user != nil && owner != nil && owner.Username == user.Username
	}
}
