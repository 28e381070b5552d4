package construct

import (
	"fmt"
	"strings"
)

// Kind is the type of cloud entity a [Resource] declares.
type Kind int

const (
	KindUnknown Kind = iota
	KindProvider
	KindImageLookup
	KindIamRole
	KindInstanceProfile
	KindInstance
	KindBucket
	KindPolicyAttachment
)

var kindNames = map[Kind]string{
	KindProvider:         "provider",
	KindImageLookup:      "image_lookup",
	KindIamRole:          "iam_role",
	KindInstanceProfile:  "instance_profile",
	KindInstance:         "instance",
	KindBucket:           "bucket",
	KindPolicyAttachment: "policy_attachment",
}

// Kinds lists every known kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindProvider,
		KindImageLookup,
		KindIamRole,
		KindInstanceProfile,
		KindInstance,
		KindBucket,
		KindPolicyAttachment,
	}
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) IsValid() bool {
	_, ok := kindNames[k]
	return ok
}

// IsLookup reports whether nodes of this kind are resolved through the Lookup collaborator
// rather than being provisioned.
func (k Kind) IsLookup() bool {
	return k == KindImageLookup
}

func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown resource kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(data []byte) error {
	parsed, err := ParseKind(string(data))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
