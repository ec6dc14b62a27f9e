package kb

import "gopkg.in/yaml.v3"

// ForModel serializes the KB for injection into a model prompt, with the
// street address replaced by the disclosure-safe location phrase. This is
// the first redaction layer; the response-side Redactor is the second.
func (k *KnowledgeBase) ForModel() (string, error) {
	shadow := *k
	if shadow.Business.Address != "" {
		shadow.Business.Address = shadow.Business.SafeLocation()
	}
	out, err := yaml.Marshal(&shadow)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
