package auth

// SetCompare replaces the password hash comparison of p.
func SetCompare(p *Provider, compare func(hashedPassword, password []byte) error) {
	p.compare = compare
}
